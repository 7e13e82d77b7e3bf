// x is a package that provides experimental features and utilities.
package x

import "strconv"

func ToHumanMiB(bytes int64) string {
	return strconv.FormatFloat(float64(bytes)/(1024.0*1024.0), 'f', 2, 64) + "MiB"
}

// Bar renders a fixed width textual progress bar for a 0-100 percentage.
func Bar(percent, width int) string {
	percent = min(max(percent, 0), 100)
	filled := percent * width / 100
	b := make([]byte, 0, width+2)
	b = append(b, '[')
	for i := range width {
		if i < filled {
			b = append(b, '#')
		} else {
			b = append(b, '.')
		}
	}
	b = append(b, ']')
	return string(b)
}
