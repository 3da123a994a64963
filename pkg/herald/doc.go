// Package herald sends templated WhatsApp messages to a recipient list
// without messaging the same recipient twice across runs.
//
// A run loads a sender profile, reads the recipient CSV, drops every
// recipient already in the ledger, assigns templates round-robin and sends
// through a bounded worker pool. Successful sends are appended to the ledger
// unless the run opts out of recording.
//
// Example:
//
//	cfg := herald.DefaultConfig()
//	cfg.Profile = "main"
//	cfg.LeadsPath = "leads.csv"
//	d, err := herald.New(cfg, herald.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	res, err := d.Run(ctx)
//
// Configuration errors (unknown profile, empty template list, bad URL
// parameter tokens) abort before the first send. Failures of individual
// messages are reported per item and never stop the run.
package herald
