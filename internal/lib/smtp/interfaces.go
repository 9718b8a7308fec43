// Package smtp provides the SMTP transport for outgoing mail.
package smtp

import "io"

// Client is the subset of the smtp client the sender needs.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface abstracts the connection setup for tests.
type TransportInterface interface {
	Connect() (Client, error)
	GetSMTPUser() string
}
