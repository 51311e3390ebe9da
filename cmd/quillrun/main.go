// Quillrun runs one compiled quill bytecode program to completion.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/quillrt/quill/internal/inspect"
	"github.com/quillrt/quill/internal/rterr"
	"github.com/quillrt/quill/internal/runtime"
	"github.com/quillrt/quill/internal/scheduler"
)

var (
	configDir   = flag.String("config-dir", "", "directory to search for quill.toml (defaults to the program's own directory)")
	version     = flag.Bool("version", false, "print version and exit")
	inspectAddr = flag.String("inspect", "", "if set, serve a read-only task/heap snapshot (Connect on this address, gRPC health/reflection on the next port) e.g. localhost:9090")
)

const versionStr = "0.1.0"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Quillrun - run a compiled quill bytecode program\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  quillrun [options] program.qb\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		fmt.Printf("quillrun version %s\n", versionStr)
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	dir := *configDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	cfg, err := runtime.FindAndLoadConfig(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "quillrun: loading quill.toml: %v\n", err)
		os.Exit(1)
	}

	opts := &runtime.Options{}
	if *inspectAddr != "" {
		opts.OnScheduler = func(sched *scheduler.Scheduler) {
			startInspectServers(*inspectAddr, sched)
		}
	}

	result, err := runtime.Run(path, nil, cfg, opts)
	if err != nil {
		if errors.Is(err, runtime.ErrFormat) {
			fmt.Fprintf(os.Stderr, "quillrun: %v\n", err)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "quillrun: %v\n", err)
		os.Exit(1)
	}

	if result.Failed {
		kind, _ := rterr.KindOf(result.Value)
		msg, _ := rterr.Message(result.Value)
		fmt.Fprintf(os.Stderr, "quillrun: uncaught %s: %s\n", kind, msg)
		os.Exit(1)
	}

	os.Exit(0)
}

// startInspectServers mounts the Connect snapshot service on addr and a
// bare gRPC health/reflection server on the next port up, both in
// background goroutines. Neither failure is fatal to the run itself —
// the inspect surface is strictly opt-in and read-only.
func startInspectServers(addr string, sched *scheduler.Scheduler) {
	handler, err := inspect.NewHandler(sched)
	if err != nil {
		log.Printf("quillrun: inspect: building handler: %v", err)
		return
	}
	go func() {
		if serveErr := http.ListenAndServe(addr, handler); serveErr != nil {
			log.Printf("quillrun: inspect: connect server: %v", serveErr)
		}
	}()

	host, port, splitErr := net.SplitHostPort(addr)
	if splitErr != nil {
		log.Printf("quillrun: inspect: no gRPC health/reflection server (bad -inspect address %q)", addr)
		return
	}
	grpcPort, portErr := net.LookupPort("tcp", port)
	if portErr != nil {
		log.Printf("quillrun: inspect: no gRPC health/reflection server (bad -inspect port %q)", port)
		return
	}
	lis, listenErr := net.Listen("tcp", net.JoinHostPort(host, fmt.Sprint(grpcPort+1)))
	if listenErr != nil {
		log.Printf("quillrun: inspect: gRPC health/reflection server: %v", listenErr)
		return
	}
	go func() {
		if serveErr := inspect.ServeGRPC(lis); serveErr != nil {
			log.Printf("quillrun: inspect: gRPC health/reflection server: %v", serveErr)
		}
	}()
}
