package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Level is the severity found on a log line.
type Level int

const (
	LevelUnknown Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return ""
	}
}

var textLevels = map[string]Level{
	"DBG": LevelDebug, "DEBUG": LevelDebug,
	"INF": LevelInfo, "INFO": LevelInfo,
	"WRN": LevelWarn, "WARN": LevelWarn,
	"ERR": LevelError, "ERROR": LevelError,
}

// ParseLevel detects the level of a line written by the text (tint) or JSON
// handler. Continuation and foreign lines yield LevelUnknown.
func ParseLevel(line string) Level {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "{") {
		var entry struct {
			Level string `json:"level"`
		}
		if json.Unmarshal([]byte(trimmed), &entry) == nil {
			return textLevels[strings.ToUpper(entry.Level)]
		}
		return LevelUnknown
	}
	// tint: "3:04PM INF message key=value"
	fields := strings.Fields(trimmed)
	for i := 0; i < len(fields) && i < 2; i++ {
		if lvl, ok := textLevels[strings.TrimPrefix(fields[i], "level=")]; ok {
			return lvl
		}
	}
	return LevelUnknown
}
