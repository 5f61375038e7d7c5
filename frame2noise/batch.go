package frame2noise

import (
	"context"
	"errors"
	"sync"

	bantypes "github.com/TcePrepK/BadAppleNoised/type"
)

// TransformAll 对多帧进行噪点化（并行版），结果与输入顺序一致
func TransformAll(ctx context.Context, frames []bantypes.Frame, parallel int, t *Transformer) ([]bantypes.Frame, error) {
	if len(frames) == 0 {
		return nil, errors.New("no frames provided")
	}
	if t == nil {
		t = defaultTransformer
	}
	if parallel <= 0 {
		parallel = 1
	}

	results := make([]bantypes.Frame, len(frames))
	errs := make(chan error, len(frames))
	sem := make(chan struct{}, parallel)

	var wg sync.WaitGroup
	for i, f := range frames {
		wg.Add(1)
		go func(idx int, frame bantypes.Frame) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if err := ctx.Err(); err != nil {
				errs <- err
				return
			}
			if frame.Image == nil || frame.Index < 0 {
				errs <- errors.New("invalid frame")
				return
			}
			results[idx] = bantypes.Frame{
				Index: frame.Index,
				Image: t.Transform(uint(frame.Index), frame.Image),
			}
		}(i, f)
	}

	wg.Wait()
	close(errs)

	// 返回第一个错误（如果有）
	for err := range errs {
		return nil, err
	}
	return results, nil
}
