// Command flowbased is the dataflow engine's TCP server: it accepts
// connections from external collaborators, decodes length-framed
// wire.Envelope commands off each one, and serializes their execution
// onto a single Manager through one worker goroutine (spec §5, §6).
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"

	"github.com/wbrown/flowbase/logging"
	"github.com/wbrown/flowbase/manager"
	"github.com/wbrown/flowbase/wire"
)

func main() {
	var addr string
	var verbose bool
	var help bool

	flag.StringVar(&addr, "addr", "127.0.0.1:8000", "address to listen on")
	flag.BoolVar(&verbose, "verbose", false, "verbose mode (log every dispatched command)")
	flag.BoolVar(&help, "h", false, "show help")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "An interactive incremental dataflow engine for relational queries.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                    # Listen on 127.0.0.1:8000\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -addr :9000        # Listen on a custom address\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -verbose           # Log every dispatched command\n", os.Args[0])
	}
	flag.Parse()

	if help {
		flag.Usage()
		os.Exit(0)
	}

	var handler logging.Handler
	if verbose {
		handler = logging.ConsoleHandler()
	}

	mgr, err := manager.New(handler)
	if err != nil {
		log.Fatalf("flowbased: failed to start manager: %v", err)
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("flowbased: failed to listen on %s: %v", addr, err)
	}
	log.Printf("flowbased: listening on %s", listener.Addr())

	// Every command, from every connection, is pushed through this single
	// channel and drained by one worker goroutine: the command loop is
	// single-worker cooperative regardless of how many clients are
	// concurrently connected (spec §5 "single-worker cooperative").
	work := make(chan dispatchRequest)
	go runWorker(mgr, work)

	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Printf("flowbased: accept error: %v", err)
			continue
		}
		go serveConn(conn, work)
	}
}

// dispatchRequest pairs a decoded command with the channel its result
// should be delivered back on, so one worker can serve many connections
// without connections blocking each other beyond the single-worker
// ordering guarantee itself.
type dispatchRequest struct {
	cmd  manager.Command
	done chan error
}

func runWorker(mgr *manager.Manager, work <-chan dispatchRequest) {
	for req := range work {
		req.done <- mgr.Dispatch(req.cmd)
	}
}

func serveConn(conn net.Conn, work chan<- dispatchRequest) {
	defer conn.Close()
	remote := conn.RemoteAddr()
	log.Printf("flowbased: connection opened: %s", remote)
	defer log.Printf("flowbased: connection closed: %s", remote)

	for {
		env, err := wire.Decode(conn)
		if err != nil {
			if err != io.EOF {
				log.Printf("flowbased: %s: decode error: %v", remote, err)
			}
			return
		}

		cmd := env.ToCommand()
		if cmd == nil {
			log.Printf("flowbased: %s: unrecognized command kind %d, closing connection", remote, env.Kind)
			return
		}

		done := make(chan error, 1)
		work <- dispatchRequest{cmd: cmd, done: done}
		if err := <-done; err != nil {
			log.Printf("flowbased: %s: command error: %v", remote, err)
			return
		}

		if env.Kind == wire.KindShutdown {
			return
		}
	}
}
