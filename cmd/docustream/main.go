package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docustream.dev/docustream/cidutil"
	"docustream.dev/docustream/model"
	"docustream.dev/docustream/rpc"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "apply":
		return cmdApply(args[1:], out, errOut)
	case "convert":
		return cmdConvert(args[1:], out, errOut)
	case "inspect":
		return cmdInspect(args[1:], out, errOut)
	case "cid":
		return cmdCID(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "docustream: document templating client")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  docustream apply [--addr <host:port>] [--out <file>] [--header k=v ...] [--body k=v ...] [--header-image k=<file> ...] [--body-image k=<file> ...] <template.docx>")
	fmt.Fprintln(w, "  docustream convert [--addr <host:port>] [--out <file>] <file.docx>")
	fmt.Fprintln(w, "  docustream inspect [--addr <host:port>] <file>")
	fmt.Fprintln(w, "  docustream cid <file>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - placeholders are written {{key}} in the template; whitespace inside the braces is ignored")
	fmt.Fprintln(w, "  - image placeholders match the picture's alt text exactly, e.g. {{photo}}")
	fmt.Fprintln(w, "  - output goes to stdout unless --out is given")
	fmt.Fprintln(w, "  - cid prints the CIDv1 (raw, sha2-256) the server sends as the reply trailer")
}

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type commonFlags struct {
	addr        string
	timeout     time.Duration
	chunk       int
	maxMsgBytes int
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.addr, "addr", "127.0.0.1:7780", "docustreamd address")
	fs.DurationVar(&c.timeout, "timeout", 2*time.Minute, "per-call timeout")
	fs.IntVar(&c.chunk, "chunk", rpc.DefaultChunkSize, "fragment size in bytes")
	fs.IntVar(&c.maxMsgBytes, "max-msg-bytes", 16<<20, "max gRPC message size")
}

func (c *commonFlags) dial() (*rpc.Client, error) {
	client, err := rpc.Dial(c.addr, rpc.DialOptions{MaxMsgBytes: c.maxMsgBytes})
	if err != nil {
		return nil, err
	}
	client.Timeout = c.timeout
	client.ChunkSize = c.chunk
	return client, nil
}

// request collects substitutions from flags. Image files become attachments
// in flag order, starting at stream 1.
type request struct {
	req rpc.ApplyRequest
}

func (r *request) text(scope model.Scope, pairs []string) error {
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			return fmt.Errorf("expected key=value, got %q", p)
		}
		r.add(scope, model.Text(k, v))
	}
	return nil
}

func (r *request) images(scope model.Scope, pairs []string) error {
	for _, p := range pairs {
		k, path, ok := strings.Cut(p, "=")
		if !ok || path == "" {
			return fmt.Errorf("expected key=file, got %q", p)
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
		r.req.Attachments = append(r.req.Attachments, b)
		r.add(scope, model.Image(k, len(r.req.Attachments)))
	}
	return nil
}

func (r *request) add(scope model.Scope, v model.Value) {
	if scope == model.ScopeHeader {
		r.req.Header = append(r.req.Header, v)
		return
	}
	r.req.Body = append(r.req.Body, v)
}

func cmdApply(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var common commonFlags
	common.register(fs)
	var outPath string
	var header, body, headerImages, bodyImages stringList
	fs.StringVar(&outPath, "out", "", "write the rendered document to this file")
	fs.Var(&header, "header", "header text substitution key=value (repeatable)")
	fs.Var(&body, "body", "body text substitution key=value (repeatable)")
	fs.Var(&headerImages, "header-image", "header image substitution key=file (repeatable)")
	fs.Var(&bodyImages, "body-image", "body image substitution key=file (repeatable)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: docustream apply [flags] <template.docx>")
		return 2
	}

	var r request
	for _, step := range []func() error{
		func() error { return r.text(model.ScopeHeader, header) },
		func() error { return r.text(model.ScopeBody, body) },
		func() error { return r.images(model.ScopeHeader, headerImages) },
		func() error { return r.images(model.ScopeBody, bodyImages) },
	} {
		if err := step(); err != nil {
			fmt.Fprintln(errOut, err)
			return 2
		}
	}

	tpl, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", filepath.Base(fs.Arg(0)), err)
		return 1
	}
	r.req.Document = tpl

	client, err := common.dial()
	if err != nil {
		fmt.Fprintf(errOut, "dial: %v\n", err)
		return 1
	}
	defer client.Close()

	doc, err := client.Apply(context.Background(), r.req)
	if err != nil {
		return reportCallErr(errOut, "apply", err)
	}
	return writeOutput(out, errOut, outPath, doc)
}

func cmdConvert(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var common commonFlags
	common.register(fs)
	var outPath string
	fs.StringVar(&outPath, "out", "", "write the PDF to this file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: docustream convert [flags] <file.docx>")
		return 2
	}
	doc, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", filepath.Base(fs.Arg(0)), err)
		return 1
	}

	client, err := common.dial()
	if err != nil {
		fmt.Fprintf(errOut, "dial: %v\n", err)
		return 1
	}
	defer client.Close()

	pdf, err := client.Convert(context.Background(), doc)
	if err != nil {
		return reportCallErr(errOut, "convert", err)
	}
	return writeOutput(out, errOut, outPath, pdf)
}

func cmdInspect(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var common commonFlags
	common.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: docustream inspect [flags] <file>")
		return 2
	}
	b, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", filepath.Base(fs.Arg(0)), err)
		return 1
	}

	client, err := common.dial()
	if err != nil {
		fmt.Fprintf(errOut, "dial: %v\n", err)
		return 1
	}
	defer client.Close()

	mime, ext, err := client.Inspect(context.Background(), b)
	if err != nil {
		return reportCallErr(errOut, "inspect", err)
	}
	_, _ = fmt.Fprintf(out, "%s\t%s\n", mime, ext)
	return 0
}

func cmdCID(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("cid", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: docustream cid <file>")
		return 2
	}
	path := fs.Arg(0)
	b, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", filepath.Base(path), err)
		return 1
	}
	_, _ = fmt.Fprintln(out, cidutil.String(b))
	return 0
}

func reportCallErr(errOut io.Writer, op string, err error) int {
	var e *model.Error
	if errors.As(err, &e) {
		fmt.Fprintf(errOut, "%s failed: %s\n", op, e.Kind)
		fmt.Fprintf(errOut, "  %s\n", e.Message)
		if e.Detected != "" {
			fmt.Fprintf(errOut, "  detected: %s\n", e.Detected)
		}
		return 1
	}
	fmt.Fprintf(errOut, "%s failed: %v\n", op, err)
	return 1
}

func writeOutput(out io.Writer, errOut io.Writer, path string, b []byte) int {
	if path == "" || path == "-" {
		if _, err := out.Write(b); err != nil {
			fmt.Fprintf(errOut, "write: %v\n", err)
			return 1
		}
		return 0
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		fmt.Fprintf(errOut, "write %s: %v\n", filepath.Base(path), err)
		return 1
	}
	return 0
}
