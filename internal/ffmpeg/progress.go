package ffmpeg

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
)

// timeRegex matches the time=HH:MM:SS.cc field ffmpeg prints on its stats
// line, and the out_time= variant of the -progress stream.
var timeRegex = regexp.MustCompile(`(?:out_)?time=\s*(\d+):(\d+):(\d+(?:\.\d+)?)`)

// parseProgressSeconds extracts the current output timestamp in seconds from
// one line of ffmpeg stderr. Returns false when the line carries no timestamp.
func parseProgressSeconds(line string) (float64, bool) {
	m := timeRegex.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	hours, err1 := strconv.ParseFloat(m[1], 64)
	minutes, err2 := strconv.ParseFloat(m[2], 64)
	seconds, err3 := strconv.ParseFloat(m[3], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}
	return hours*3600 + minutes*60 + seconds, true
}

// scanStatsLines splits ffmpeg stderr on both \n and \r, since ffmpeg
// rewrites its stats line in place with carriage returns.
func scanStatsLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := strings.IndexAny(string(data), "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func newStatsScanner(r *bufio.Scanner) *bufio.Scanner {
	r.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	r.Split(scanStatsLines)
	return r
}
