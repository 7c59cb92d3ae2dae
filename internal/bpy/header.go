package bpy

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// EndFrameKey names the script variable holding the end frame the scene was generated
// for. Pivot orbit and packet start frames are baked against it.
const EndFrameKey = "GENERATED_END_FRAME"

// ReadEndFrame scans a host script for its generated end frame. ok is false when the
// script has no such line, e.g. a hand-written script.
func ReadEndFrame(r io.Reader) (frame int, ok bool, err error) {
	sc := bufio.NewScanner(r)
	prefix := EndFrameKey + " ="
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		v := strings.TrimSpace(strings.TrimPrefix(line, prefix))
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false, fmt.Errorf("bpy: bad %s %q: %w", EndFrameKey, v, err)
		}
		return n, true, nil
	}
	if err := sc.Err(); err != nil {
		return 0, false, fmt.Errorf("bpy: %w", err)
	}
	return 0, false, nil
}

// ReadEndFrameFile is ReadEndFrame on the file at path.
func ReadEndFrameFile(path string) (int, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false, fmt.Errorf("bpy: %w", err)
	}
	defer f.Close()
	return ReadEndFrame(f)
}
