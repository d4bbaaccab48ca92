package beheader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
)

// Function variables for testing injection.
var (
	probeMedia  = probeMediaFile
	transcodeAV = transcodeAVFile
)

type probeReport struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
	} `json:"streams"`
}

// probeMediaFile reports whether input has at least one video stream.
func probeMediaFile(ctx context.Context, ffprobe, input string) (bool, error) {
	cmd := exec.CommandContext(ctx, ffprobe,
		"-v", "error",
		"-select_streams", "v",
		"-show_entries", "stream=codec_type",
		"-of", "json",
		input)
	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, fmt.Errorf("%w: probe %s: %w", ErrTranscode, filepath.Base(input), ctxErr)
		}
		return false, fmt.Errorf("%w: probe %s: %v", ErrTranscode, filepath.Base(input), execDetail(err))
	}
	return parseProbeReport(out)
}

func parseProbeReport(out []byte) (bool, error) {
	var rep probeReport
	if err := json.Unmarshal(out, &rep); err != nil {
		return false, fmt.Errorf("%w: probe output: %v", ErrTranscode, err)
	}
	return len(rep.Streams) > 0, nil
}

// transcodeArgs builds the ffmpeg invocation. Video gets H.264 with even
// dimensions forced for the pixel format; audio-only input gets AAC and
// relies on the output suffix for the container.
func transcodeArgs(input, output string, hasVideo bool) []string {
	args := []string{"-y", "-i", input}
	if hasVideo {
		args = append(args,
			"-c:v", "libx264",
			"-strict", "-2",
			"-preset", "slow",
			"-pix_fmt", "yuv420p",
			"-vf", "scale=trunc(iw/2)*2:trunc(ih/2)*2",
			"-f", "mp4")
	} else {
		args = append(args, "-c:a", "aac", "-b:a", "192k")
	}
	return append(args, output)
}

func transcodeAVFile(ctx context.Context, ffmpeg, input, output string, hasVideo bool) error {
	cmd := exec.CommandContext(ctx, ffmpeg, transcodeArgs(input, output, hasVideo)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: transcode %s: %w", ErrTranscode, filepath.Base(input), ctxErr)
		}
		if line := lastLine(stderr.Bytes()); line != "" {
			return fmt.Errorf("%w: transcode %s: %v: %s", ErrTranscode, filepath.Base(input), err, line)
		}
		return fmt.Errorf("%w: transcode %s: %v", ErrTranscode, filepath.Base(input), err)
	}
	return nil
}

// execDetail folds captured stderr into exec errors where available.
func execDetail(err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if line := lastLine(exitErr.Stderr); line != "" {
			return fmt.Errorf("%v: %s", err, line)
		}
	}
	return err
}

// lastLine returns the final non-empty line of tool output, which is where
// ffmpeg and ffprobe put the actual failure.
func lastLine(out []byte) string {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return ""
	}
	if i := bytes.LastIndexByte(out, '\n'); i >= 0 {
		out = out[i+1:]
	}
	return string(bytes.TrimSpace(out))
}
