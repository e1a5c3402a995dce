package therapy

import "os"

// silenceStdout redirects os.Stdout to the null device and returns a
// restore function. The caller must invoke restore on every exit path;
// restoration is unconditional and independent of the solver outcome.
func silenceStdout() (restore func()) {
	devnull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		return func() {}
	}
	old := os.Stdout
	os.Stdout = devnull
	return func() {
		os.Stdout = old
		devnull.Close()
	}
}
