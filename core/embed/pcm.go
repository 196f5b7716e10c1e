package embed

import (
	"io"
	"os"

	"EchoFM/core/errs"

	mp3 "github.com/hajimehoshi/go-mp3"
)

// DecodeMP3 将MP3文件解码为单声道float32采样，并重采样到目标采样率。
// 解码输出为16位小端双声道PCM，左右声道取平均合成单声道。
func DecodeMP3(path string, targetRate int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrEmbedding, err, "打开音频文件失败")
	}
	defer f.Close()

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, errs.Wrap(errs.ErrEmbedding, err, "解码MP3失败")
	}

	var samples []float32
	buf := make([]byte, 4096)
	for {
		n, err := decoder.Read(buf)
		// 每帧4字节：左右声道各一个int16
		for i := 0; i+3 < n; i += 4 {
			left := int16(buf[i]) | int16(buf[i+1])<<8
			right := int16(buf[i+2]) | int16(buf[i+3])<<8
			samples = append(samples, (float32(left)+float32(right))/2/32768.0)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errs.Wrap(errs.ErrEmbedding, err, "读取PCM数据失败")
		}
	}

	return Resample(samples, decoder.SampleRate(), targetRate), nil
}

// Resample 线性插值重采样
func Resample(samples []float32, srcRate, dstRate int) []float32 {
	if srcRate == dstRate || len(samples) == 0 {
		return samples
	}

	ratio := float64(srcRate) / float64(dstRate)
	outLen := int(float64(len(samples)) / ratio)
	if outLen < 1 {
		outLen = 1
	}

	out := make([]float32, outLen)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := float32(pos - float64(idx))
		out[i] = samples[idx]*(1-frac) + samples[idx+1]*frac
	}
	return out
}

// CenterCrop 截取信号中间的窗口，长度不足时原样返回
func CenterCrop(samples []float32, maxSamples int) []float32 {
	if len(samples) <= maxSamples {
		return samples
	}
	start := (len(samples) - maxSamples) / 2
	return samples[start : start+maxSamples]
}
