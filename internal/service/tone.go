package service

import (
	"bytes"
	"encoding/binary"
	"math"
	"unicode/utf8"
)

const (
	toneSampleRate = 22050
	toneAmplitude  = 0.3
	toneBaseFreq   = 440.0
	toneWobble     = 60.0
)

// PlaceholderTone synthesizes a short wobbling sine-wave WAV used when the
// TTS service is unavailable. Duration scales with text length, capped at
// 3.5 seconds.
func PlaceholderTone(text string) []byte {
	duration := 0.5 + float64(utf8.RuneCountInString(text))/25
	if duration > 3.5 {
		duration = 3.5
	}

	totalFrames := int(duration * toneSampleRate)
	pcm := make([]int16, totalFrames)
	for i := 0; i < totalFrames; i++ {
		freq := toneBaseFreq + toneWobble*math.Sin(2*math.Pi*float64(i)/toneSampleRate)
		sample := toneAmplitude * math.Sin(2*math.Pi*freq*float64(i)/toneSampleRate)
		pcm[i] = int16(sample * 32767)
	}

	return encodeWAV(pcm, toneSampleRate)
}

// encodeWAV wraps mono 16-bit PCM frames in a RIFF/WAVE container.
func encodeWAV(pcm []int16, sampleRate int) []byte {
	dataSize := len(pcm) * 2

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2)) // byte rate
	binary.Write(&buf, binary.LittleEndian, uint16(2))            // block align
	binary.Write(&buf, binary.LittleEndian, uint16(16))           // bits per sample

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	binary.Write(&buf, binary.LittleEndian, pcm)

	return buf.Bytes()
}
