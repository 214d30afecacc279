package main

import (
	"bufio"
	"io"
	"strconv"
)

// WriteReport prints one plain decimal millisecond value per line, in measurement order.
func WriteReport(w io.Writer, measurements []Measurement) error {
	buffered := bufio.NewWriter(w)
	for _, measurement := range measurements {
		line := strconv.AppendFloat(nil, measurement.Milliseconds(), 'f', -1, 64)
		line = append(line, '\n')
		if _, err := buffered.Write(line); err != nil {
			return err
		}
	}
	return buffered.Flush()
}
