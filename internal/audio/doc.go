// Package audio provides the mono waveform container, 16-bit PCM WAV
// encode/decode, and the short-time DSP primitives (FFT, framing, spectral
// features, MFCCs) shared by the quality analyzer, the enhancer, and the
// speaker diarizer.
package audio
