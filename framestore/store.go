package framestore

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// DefaultPattern 四位补零的帧文件名，与 ffmpeg 的 image2 命名一致
const DefaultPattern = "frame_%04d.png"

// Store 是按帧号命名的一组图片文件
type Store struct {
	Dir     string
	Pattern string
}

func New(dir, pattern string) Store {
	if pattern == "" {
		pattern = DefaultPattern
	}
	return Store{Dir: dir, Pattern: pattern}
}

// Template 返回交给 ffmpeg 的路径模板
func (s Store) Template() string {
	return filepath.Join(s.Dir, s.Pattern)
}

func (s Store) Path(index int) string {
	return filepath.Join(s.Dir, fmt.Sprintf(s.Pattern, index))
}

func (s Store) Exists(index int) bool {
	_, err := os.Stat(s.Path(index))
	return err == nil
}

// Count 从 0 开始数连续存在的帧，遇到第一个缺口即停止
func (s Store) Count() int {
	n := 0
	for s.Exists(n) {
		n++
	}
	return n
}

func (s Store) Load(index int) (image.Image, error) {
	img, err := imaging.Open(s.Path(index))
	if err != nil {
		return nil, fmt.Errorf("decode frame %d failed: %w", index, err)
	}
	return img, nil
}

// Save 按扩展名选择编码格式
func (s Store) Save(index int, img image.Image) error {
	if err := imaging.Save(img, s.Path(index)); err != nil {
		return fmt.Errorf("encode frame %d failed: %w", index, err)
	}
	return nil
}

// Reset 删除并重新创建目录
func (s Store) Reset() error {
	if err := os.RemoveAll(s.Dir); err != nil {
		return err
	}
	return os.MkdirAll(s.Dir, os.ModePerm)
}

// RemoveFile 删除文件，不存在时不算错误
func RemoveFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
