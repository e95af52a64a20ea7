// serve_config.go defines the configuration for serving a node.

package node

type ServeConfig struct {
	// StopOnError makes Serve return on the first failed item instead of
	// reporting it and moving on.
	StopOnError bool

	// ContinueAfterEOS keeps serving after an EOS event (e.g. when a flush
	// is expected to restart the stream).
	ContinueAfterEOS bool
}
