package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-logfmt/logfmt"
)

// Read returns at most maxLines from the end of the file at path. A missing
// file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
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
		for i := range count {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Attr is one key=value pair of a record beyond time, level and msg.
type Attr struct {
	Key   string
	Value string
}

// Entry is a parsed slog text record.
type Entry struct {
	Time    time.Time
	Level   string // DEBUG, INFO, WARN, ERROR; empty for unparsed lines
	Message string
	Attrs   []Attr
	Raw     string
}

// Parse decodes one line written by slog's text handler. Lines that are not
// logfmt come back with only Raw and Message set.
func Parse(line string) Entry {
	entry := Entry{Raw: line}
	dec := logfmt.NewDecoder(strings.NewReader(line))
	for dec.ScanRecord() {
		for dec.ScanKeyval() {
			key, value := string(dec.Key()), string(dec.Value())
			switch key {
			case "time":
				if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
					entry.Time = t
				}
			case "level":
				entry.Level = strings.ToUpper(value)
			case "msg":
				entry.Message = value
			default:
				entry.Attrs = append(entry.Attrs, Attr{Key: key, Value: value})
			}
		}
	}
	if dec.Err() != nil || entry.Level == "" {
		return Entry{Raw: line, Message: strings.TrimSpace(line)}
	}
	return entry
}

// Tail reads and parses the last maxLines records of path.
func Tail(path string, maxLines int) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, Parse(line))
	}
	return entries, nil
}

// AttrString renders the attributes back as key=value pairs.
func (e Entry) AttrString() string {
	parts := make([]string, 0, len(e.Attrs))
	for _, a := range e.Attrs {
		if strings.ContainsAny(a.Value, " =\"") {
			parts = append(parts, fmt.Sprintf("%s=%q", a.Key, a.Value))
		} else {
			parts = append(parts, a.Key+"="+a.Value)
		}
	}
	return strings.Join(parts, " ")
}
