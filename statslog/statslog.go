package statslog

import (
	"fmt"
	"io"
	"time"
)

/*
This file defines what a stats record is and where records go.

Every served request produces one line:

	key \t bytes \t seconds.nanoseconds

Different deployments have different needs:
- Some want every line on disk before the next request is answered (write-through)
- Some want the request path never to wait on the log (write-back)
*/

// Record is one served request.
type Record struct {
	Key     string
	Bytes   int64
	Elapsed time.Duration
}

// String formats r as a stats line without the trailing newline.
func (r Record) String() string {
	secs := r.Elapsed / time.Second
	nanos := r.Elapsed % time.Second
	return fmt.Sprintf("%s\t%d\t%d.%09d", r.Key, r.Bytes, int64(secs), int64(nanos))
}

/*
Sink is the contract that all stats destinations must follow.
The responder does not care which sink is used. It simply calls these methods.
*/
type Sink interface {

	// Log is called after a response has been sent.
	Log(Record)

	// Close is called when the server is shutting down.
	Close() error
}

func writeRecord(w io.Writer, r Record) error {
	_, err := io.WriteString(w, r.String()+"\n")
	return err
}

// Discard is a Sink that drops every record.
type Discard struct{}

func (Discard) Log(Record)   {}
func (Discard) Close() error { return nil }
