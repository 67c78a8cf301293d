// Command senddemo sends one message through two simulated providers and
// prints whether it was delivered.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/jonwraymond/dispatchops/dispatch"
	"github.com/jonwraymond/dispatchops/observe"
	"github.com/jonwraymond/dispatchops/provider"
)

type options struct {
	to          string
	subject     string
	body        string
	failPercent float64
	logLevel    string
}

func main() {
	var o options
	flag.StringVar(&o.to, "to", "test@example.com", "recipient")
	flag.StringVar(&o.subject, "subject", "Hello", "subject")
	flag.StringVar(&o.body, "body", "This is a test email", "message body")
	flag.Float64Var(&o.failPercent, "fail-percent", 20, "chance in percent that a provider rejects a send")
	flag.StringVar(&o.logLevel, "log-level", "info", "debug|info|warn|error")
	flag.Parse()

	if !run(context.Background(), os.Stdout, os.Stderr, o) {
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout, stderr io.Writer, o options, extra ...dispatch.Option) bool {
	logger := observe.NewLoggerWithWriter(o.logLevel, stderr)

	primary := provider.NewChaos(provider.ChaosConfig{Name: "EmailProvider1", FailPercent: o.failPercent, Logger: logger})
	secondary := provider.NewChaos(provider.ChaosConfig{Name: "EmailProvider2", FailPercent: o.failPercent, Logger: logger})

	d, err := dispatch.New(primary, secondary, append([]dispatch.Option{dispatch.WithLogger(logger)}, extra...)...)
	if err != nil {
		fmt.Fprintln(stderr, "senddemo:", err)
		return false
	}
	defer d.Close(ctx)

	sent := d.Send(ctx, dispatch.Task{
		Recipient:      o.to,
		Subject:        o.subject,
		Body:           o.body,
		IdempotencyKey: dispatch.NewKey(),
	})
	if sent {
		fmt.Fprintln(stdout, "Email was sent successfully")
	} else {
		fmt.Fprintln(stdout, "Failed to send email or rate limit exceeded")
	}
	return sent
}
