package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// DecodeWAVFile reads a PCM WAV file into a mono waveform. Multi-channel
// input is downmixed by averaging. Only 16-bit PCM is supported, which is
// what the ffmpeg extraction step emits.
func DecodeWAVFile(path string) (Waveform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Waveform{}, fmt.Errorf("read wav: %w", err)
	}
	return DecodeWAV(data)
}

// DecodeWAV parses RIFF/WAVE bytes into a mono waveform.
func DecodeWAV(data []byte) (Waveform, error) {
	if len(data) < 44 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return Waveform{}, fmt.Errorf("decode wav: not a RIFF/WAVE stream")
	}

	var (
		sampleRate    int
		channels      int
		bitsPerSample int
		pcm           []byte
	)

	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkSize > len(data) {
			chunkSize = len(data) - body
		}
		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return Waveform{}, fmt.Errorf("decode wav: truncated fmt chunk")
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != 1 {
				return Waveform{}, fmt.Errorf("decode wav: unsupported format code %d (want PCM)", format)
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
		case "data":
			pcm = data[body : body+chunkSize]
		}
		// Chunks are word aligned.
		offset = body + chunkSize
		if chunkSize%2 == 1 {
			offset++
		}
	}

	if sampleRate == 0 || channels == 0 {
		return Waveform{}, fmt.Errorf("decode wav: missing fmt chunk")
	}
	if bitsPerSample != 16 {
		return Waveform{}, fmt.Errorf("decode wav: unsupported bit depth %d (want 16)", bitsPerSample)
	}
	if len(pcm) == 0 {
		return Waveform{}, fmt.Errorf("decode wav: missing data chunk")
	}

	frameBytes := channels * 2
	frames := len(pcm) / frameBytes
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			at := i*frameBytes + ch*2
			raw := int16(binary.LittleEndian.Uint16(pcm[at : at+2]))
			sum += float64(raw) / 32768.0
		}
		samples[i] = sum / float64(channels)
	}

	return Waveform{Samples: samples, SampleRate: sampleRate}, nil
}

// EncodeWAV serializes a mono waveform as 16-bit PCM WAV bytes.
func EncodeWAV(w Waveform) ([]byte, error) {
	if w.SampleRate <= 0 {
		return nil, fmt.Errorf("encode wav: sample rate must be positive")
	}
	dataSize := len(w.Samples) * 2
	buf := make([]byte, 44+dataSize)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], 1) // mono
	binary.LittleEndian.PutUint32(buf[24:28], uint32(w.SampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(w.SampleRate*2))
	binary.LittleEndian.PutUint16(buf[32:34], 2)
	binary.LittleEndian.PutUint16(buf[34:36], 16)

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	for i, s := range w.Samples {
		clamped := math.Max(-1, math.Min(1, s))
		binary.LittleEndian.PutUint16(buf[44+i*2:46+i*2], uint16(int16(clamped*32767)))
	}
	return buf, nil
}

// WriteWAVFile encodes the waveform and writes it to path.
func WriteWAVFile(path string, w Waveform) error {
	data, err := EncodeWAV(w)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return nil
}
