// Package transcode wraps the external ffmpeg/ffprobe tools behind the
// codec's Transcoder boundary: carrier scaling, stream probing, raw frame
// piping and audio remuxing. Every invocation is a blocking subprocess
// call; callers own cancellation policy.
package transcode

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"stego-backend/stego"
)

type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
}

// New builds a transcoder using FFMPEG_PATH/FFPROBE_PATH or the binaries
// on PATH.
func New() *FFmpeg {
	ffmpegPath := os.Getenv("FFMPEG_PATH")
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	ffprobePath := os.Getenv("FFPROBE_PATH")
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpeg{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}
}

// CheckAvailability verifies that ffmpeg and ffprobe are installed.
func (f *FFmpeg) CheckAvailability() error {
	if err := exec.Command(f.ffmpegPath, "-version").Run(); err != nil {
		return fmt.Errorf("ffmpeg not available: %v", err)
	}
	if err := exec.Command(f.ffprobePath, "-version").Run(); err != nil {
		return fmt.Errorf("ffprobe not available: %v", err)
	}
	return nil
}

func (f *FFmpeg) run(args ...string) error {
	cmd := exec.Command(f.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg %s: %v: %s", args[0], err, lastLine(stderr.String()))
	}
	return nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}

// Scale re-encodes the input at the requested resolution and returns the
// path of the scaled copy, next to the input.
func (f *FFmpeg) Scale(inputPath string, width, height int) (string, error) {
	outputPath := filepath.Join(filepath.Dir(inputPath), fmt.Sprintf("scaled_%dp.mp4", height))
	err := f.run(
		"-y",
		"-i", inputPath,
		"-vf", fmt.Sprintf("scale=%d:%d", width, height),
		"-preset", "fast",
		outputPath,
	)
	if err != nil {
		return "", err
	}
	return outputPath, nil
}

// Probe reads width, height, frame rate and frame count of the first video
// stream. FrameCount is 0 when the container does not report it.
func (f *FFmpeg) Probe(path string) (stego.VideoMeta, error) {
	cmd := exec.Command(f.ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate,nb_frames",
		"-of", "csv=p=0",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return stego.VideoMeta{}, fmt.Errorf("ffprobe: %v", err)
	}

	fields := strings.Split(strings.TrimSpace(string(out)), ",")
	if len(fields) < 3 {
		return stego.VideoMeta{}, fmt.Errorf("ffprobe: unexpected output %q", out)
	}

	var meta stego.VideoMeta
	meta.Width, _ = strconv.Atoi(fields[0])
	meta.Height, _ = strconv.Atoi(fields[1])
	meta.FPS = parseRate(fields[2])
	if meta.FPS <= 0 {
		meta.FPS = 30.0
	}
	if len(fields) > 3 {
		meta.FrameCount, _ = strconv.Atoi(fields[3]) // "N/A" parses to 0
	}
	return meta, nil
}

// parseRate converts ffprobe's rational frame rate ("30000/1001") to a float.
func parseRate(s string) float64 {
	num, den, found := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

// frameReader streams rgb24 frames from a running ffmpeg decode process.
type frameReader struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
}

func (r *frameReader) ReadFrame(buf []byte) error {
	_, err := io.ReadFull(r.stdout, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return io.EOF
	}
	return err
}

// Close tears the decoder down even if the stream was not fully consumed;
// early-exit extraction relies on this.
func (r *frameReader) Close() error {
	r.stdout.Close()
	if r.cmd.Process != nil {
		r.cmd.Process.Kill()
	}
	r.cmd.Wait()
	return nil
}

// OpenSource starts an ffmpeg process decoding path into raw rgb24 frames
// on a pipe.
func (f *FFmpeg) OpenSource(path string) (stego.FrameSource, stego.VideoMeta, error) {
	meta, err := f.Probe(path)
	if err != nil {
		return nil, stego.VideoMeta{}, err
	}

	cmd := exec.Command(f.ffmpegPath,
		"-i", path,
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, stego.VideoMeta{}, fmt.Errorf("ffmpeg pipe: %v", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, stego.VideoMeta{}, fmt.Errorf("ffmpeg start: %v", err)
	}
	return &frameReader{cmd: cmd, stdout: stdout}, meta, nil
}

// frameWriter streams rgb24 frames into a running ffmpeg encode process.
type frameWriter struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
}

func (w *frameWriter) WriteFrame(buf []byte) error {
	_, err := w.stdin.Write(buf)
	return err
}

func (w *frameWriter) Close() error {
	w.stdin.Close()
	return w.cmd.Wait()
}

// OpenSink starts an ffmpeg process encoding raw rgb24 frames to FFV1 in a
// Matroska container. FFV1 is lossless, which the LSB payload requires;
// any lossy intermediate codec would corrupt the embedded bits.
func (f *FFmpeg) OpenSink(path string, meta stego.VideoMeta) (stego.FrameSink, error) {
	cmd := exec.Command(f.ffmpegPath,
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", meta.Width, meta.Height),
		"-r", fmt.Sprintf("%g", meta.FPS),
		"-i", "pipe:0",
		"-c:v", "ffv1",
		"-level", "3",
		path,
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg pipe: %v", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start: %v", err)
	}
	return &frameWriter{cmd: cmd, stdin: stdin}, nil
}

// Remux copies the stego video stream untouched and maps the original
// file's audio track onto it.
func (f *FFmpeg) Remux(videoOnlyPath, originalPath, outputPath string) error {
	return f.run(
		"-y",
		"-i", videoOnlyPath,
		"-i", originalPath,
		"-c:v", "copy",
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-shortest",
		outputPath,
	)
}
