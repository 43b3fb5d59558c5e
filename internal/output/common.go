package output

import (
	"io"
	"os"
	"time"
)

const reportDateTimeLayout = "2006-01-02T15:04:05"

// withOutput runs write against path, or against stdout when path is empty.
// A created file is closed afterwards and its close error is reported.
func withOutput(path string, write func(io.Writer) error) (err error) {
	if path == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
