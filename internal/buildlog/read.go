package buildlog

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Read captures console log lines from path. A maxLines of -1 returns the
// entire log, 0 returns no lines without touching the file, and N>0 returns
// the most recent N lines.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines == 0 {
		return nil, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open build log: %w", err)
	}
	defer file.Close()

	if maxLines < 0 {
		return readAll(file)
	}
	return readLast(file, maxLines)
}

func readAll(r io.Reader) ([]string, error) {
	scanner := newLineScanner(r)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read build log: %w", err)
	}
	return lines, nil
}

// readLast keeps a fixed-size ring of the trailing lines so arbitrarily large
// logs never load fully into memory.
func readLast(r io.Reader, limit int) ([]string, error) {
	scanner := newLineScanner(r)

	ring := make([]string, limit)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % limit
		if count < limit {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read build log: %w", err)
	}

	lines := make([]string, count)
	if count == limit {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%limit]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return scanner
}
