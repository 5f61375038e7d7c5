package ffmpegio

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// VideoProbe 只关心视频流
type VideoProbe struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		NbFrames     string `json:"nb_frames"`      // 有些视频是字符串
		AvgFrameRate string `json:"avg_frame_rate"` // fallback
		Duration     string `json:"duration"`
	} `json:"streams"`
}

// Info 源视频的基本信息
type Info struct {
	Width     int
	Height    int
	Frames    int
	FrameRate float64
	Duration  float64
}

// ExpectedFrames 估算按 fps 抽帧后的帧数，未知时返回 0
func (i Info) ExpectedFrames(fps int) int {
	if i.Duration > 0 {
		return int(i.Duration * float64(fps))
	}
	if i.FrameRate > 0 && i.Frames > 0 {
		return int(float64(i.Frames) / i.FrameRate * float64(fps))
	}
	return 0
}

func ProbeVideo(tool Tool, path string) (Info, error) {
	out, err := tool.Probe(path)
	if err != nil {
		return Info{}, err
	}
	return ParseProbe(out)
}

// ParseProbe 从 ffprobe 的 JSON 输出读取第一条视频流
func ParseProbe(probeStr string) (Info, error) {
	var probe VideoProbe
	if err := json.Unmarshal([]byte(probeStr), &probe); err != nil {
		return Info{}, fmt.Errorf("json unmarshal error: %w", err)
	}

	for _, stream := range probe.Streams {
		if stream.CodecType != "video" {
			continue
		}
		info := Info{Width: stream.Width, Height: stream.Height}
		if stream.NbFrames != "" && stream.NbFrames != "0" {
			if n, err := strconv.Atoi(stream.NbFrames); err == nil {
				info.Frames = n
			}
		}
		info.FrameRate = parseRate(stream.AvgFrameRate)
		if d, err := strconv.ParseFloat(stream.Duration, 64); err == nil {
			info.Duration = d
		}
		// 如果 nb_frames 不存在，则使用 avg_frame_rate * duration 估算
		if info.Frames == 0 && info.FrameRate > 0 && info.Duration > 0 {
			info.Frames = int(info.FrameRate * info.Duration)
		}
		return info, nil
	}

	return Info{}, fmt.Errorf("no video stream found")
}

func parseRate(rate string) float64 {
	if rate == "" || rate == "0/0" {
		return 0
	}
	parts := strings.Split(rate, "/")
	if len(parts) != 2 {
		return 0
	}
	num, _ := strconv.ParseFloat(parts[0], 64)
	den, _ := strconv.ParseFloat(parts[1], 64)
	if den == 0 {
		return 0
	}
	return num / den
}
