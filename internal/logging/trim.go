package logging

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// Trim shrinks the log file at path to at most maxSize bytes by dropping
// whole lines from the top, keeping the newest entries. The trimmed file
// replaces the original atomically via a temp file in the same directory.
// Returns the number of bytes trimmed.
func Trim(path string, maxSize int64) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, err
	}

	size := fi.Size()
	if size <= maxSize {
		return 0, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	type line struct {
		text string
		size int64
	}

	var (
		kept  []line
		total int64
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		l := line{text: scanner.Text()}
		l.size = int64(len(l.text)) + 1 // account for \n

		total += l.size
		kept = append(kept, l)

		for total > maxSize && len(kept) > 0 {
			total -= kept[0].size
			kept = kept[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".trim-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, l := range kept {
		fmt.Fprintln(w, l.text)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, err
	}

	return size - total, nil
}
