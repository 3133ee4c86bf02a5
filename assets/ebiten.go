package assets

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	"github.com/hajimehoshi/ebiten/v2/text/v2"

	_ "image/jpeg"
	_ "image/png"
)

// NewEbitenRegistry builds the default loader set over the Ebiten
// backend: textures, font face sources, in-memory audio clips,
// streaming audio and Kage shaders. audioCtx may be nil if no audio
// kinds will be requested.
func NewEbitenRegistry(audioCtx *audio.Context) *Registry {
	r := NewRegistry()
	RegisterLoader[*ebiten.Image](r, textureLoader{})
	RegisterLoader[*text.GoTextFaceSource](r, fontLoader{})
	RegisterLoader[*Clip](r, clipLoader{ctx: audioCtx})
	RegisterLoader[*Stream](r, streamLoader{ctx: audioCtx})
	RegisterLoader[*ebiten.Shader](r, shaderLoader{})
	return r
}

// textureLoader decodes an image file into an *ebiten.Image. Decoders
// may deliver premultiplied-alpha pixels; sampled channels are
// converted to straight alpha before the texture is created.
type textureLoader struct{}

func (textureLoader) Load(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	// Drawing into NRGBA un-premultiplies the sampled channels.
	bounds := src.Bounds()
	straight := image.NewNRGBA(bounds)
	draw.Draw(straight, bounds, src, bounds.Min, draw.Src)

	return ebiten.NewImageFromImage(straight), nil
}

func (textureLoader) Release(value any) {
	value.(*ebiten.Image).Deallocate()
}

// fontLoader reads a TTF/OTF file into a text face source.
type fontLoader struct{}

func (fontLoader) Load(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	source, err := text.NewGoTextFaceSource(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode font: %w", err)
	}
	return source, nil
}

func (fontLoader) Release(any) {}

// Clip is a fully decoded audio buffer. Each NewPlayer call yields an
// independent player over the shared PCM data.
type Clip struct {
	ctx *audio.Context
	pcm []byte
}

// NewPlayer creates a player over the clip's decoded samples.
func (c *Clip) NewPlayer() *audio.Player {
	return c.ctx.NewPlayerFromBytes(c.pcm)
}

type clipLoader struct {
	ctx *audio.Context
}

func (l clipLoader) Load(path string) (any, error) {
	if l.ctx == nil {
		return nil, fmt.Errorf("decode audio: no audio context")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stream, err := decodeAudio(l.ctx, path, f)
	if err != nil {
		return nil, err
	}
	pcm, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}
	return &Clip{ctx: l.ctx, pcm: pcm}, nil
}

func (clipLoader) Release(any) {}

// Stream is a streaming audio handle. The backing file stays open for
// the lifetime of the cache entry.
type Stream struct {
	ctx    *audio.Context
	file   *os.File
	source io.ReadSeeker
}

// NewPlayer creates a player that decodes from the file as it plays.
func (s *Stream) NewPlayer() (*audio.Player, error) {
	return s.ctx.NewPlayer(s.source)
}

// Loop returns an infinitely looping reader over the stream.
func (s *Stream) Loop(length int64) *audio.InfiniteLoop {
	return audio.NewInfiniteLoop(s.source, length)
}

type streamLoader struct {
	ctx *audio.Context
}

func (l streamLoader) Load(path string) (any, error) {
	if l.ctx == nil {
		return nil, fmt.Errorf("decode audio: no audio context")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	source, err := decodeAudio(l.ctx, path, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Stream{ctx: l.ctx, file: f, source: source}, nil
}

func (streamLoader) Release(value any) {
	value.(*Stream).file.Close()
}

func decodeAudio(ctx *audio.Context, path string, src io.ReadSeeker) (io.ReadSeeker, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		stream, err := wav.DecodeWithSampleRate(ctx.SampleRate(), src)
		if err != nil {
			return nil, fmt.Errorf("decode wav: %w", err)
		}
		return stream, nil
	case ".ogg":
		stream, err := vorbis.DecodeWithSampleRate(ctx.SampleRate(), src)
		if err != nil {
			return nil, fmt.Errorf("decode ogg: %w", err)
		}
		return stream, nil
	default:
		return nil, fmt.Errorf("decode audio: unsupported format %q", filepath.Ext(path))
	}
}

// shaderLoader compiles a Kage shader source file.
type shaderLoader struct{}

func (shaderLoader) Load(path string) (any, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	shader, err := ebiten.NewShader(src)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	return shader, nil
}

func (shaderLoader) Release(value any) {
	value.(*ebiten.Shader).Deallocate()
}
