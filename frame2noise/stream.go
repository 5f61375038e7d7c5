package frame2noise

import (
	"math/rand/v2"
)

const (
	// WhiteSeed 白色来源像素使用的随机流种子
	WhiteSeed uint64 = 0
	// BlackSeed 黑色来源像素使用的随机流种子
	BlackSeed uint64 = 12415
)

// 低于该值的 64 位抽样视为 true，概率恰好 0.5
const half = uint64(1) << 63

// Stream 是一条可复现的布尔随机流，每次抽样推进一步
type Stream struct {
	src   *rand.PCG
	draws uint64
}

// NewStream 用给定种子构造随机流，同一种子总是得到同一序列
func NewStream(seed uint64) *Stream {
	return &Stream{src: rand.NewPCG(seed, 0)}
}

// Bool 抽取一个布尔值
func (s *Stream) Bool() bool {
	s.draws++
	return s.src.Uint64() < half
}

// Burn 丢弃 n 次抽样
func (s *Stream) Burn(n uint64) {
	for i := uint64(0); i < n; i++ {
		s.Bool()
	}
}

// Draws 返回已消耗的抽样次数（包含 Burn）
func (s *Stream) Draws() uint64 {
	return s.draws
}
