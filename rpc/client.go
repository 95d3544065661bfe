package rpc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"docustream.dev/docustream/cidutil"
	"docustream.dev/docustream/intake"
	"docustream.dev/docustream/model"
	"docustream.dev/docustream/pack"
)

// DefaultChunkSize is the fragment size used by Client when ChunkSize is zero.
const DefaultChunkSize = 64 << 10

// Client calls a Word service.
type Client struct {
	cc     *grpc.ClientConn
	client WordClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration

	// ChunkSize bounds outbound fragments; DefaultChunkSize when zero.
	ChunkSize int
}

type DialOptions struct {
	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int
}

func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}
	cc, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return NewClient(cc), nil
}

// NewClient wraps an existing connection. Close closes it.
func NewClient(cc *grpc.ClientConn) *Client {
	return &Client{cc: cc, client: NewWordClient(cc)}
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

// ApplyRequest is one templating call. Attachments[i] is sent as stream i+1,
// so an image value for Attachments[0] names stream 1.
type ApplyRequest struct {
	Document    []byte
	Attachments [][]byte
	Header      []model.Value
	Body        []model.Value
}

// Apply renders req and returns the substituted document.
func (c *Client) Apply(ctx context.Context, req ApplyRequest) ([]byte, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	stream, err := c.client.Apply(ctx)
	if err != nil {
		return nil, mapRPC(err, nil)
	}
	var msgs []*model.Request
	if len(req.Header) > 0 || len(req.Body) > 0 {
		msgs = append(msgs, &model.Request{Values: &model.ValueBatch{Header: req.Header, Body: req.Body}})
	}
	buffers := append([][]byte{req.Document}, req.Attachments...)
	for _, f := range pack.Interleave(buffers, c.chunkSize()) {
		msgs = append(msgs, &model.Request{Fragment: f})
	}
	return exchange(stream, msgs)
}

// Convert returns the PDF rendering of doc.
func (c *Client) Convert(ctx context.Context, doc []byte) ([]byte, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	stream, err := c.client.Convert(ctx)
	if err != nil {
		return nil, mapRPC(err, nil)
	}
	var msgs []*model.Request
	for _, f := range pack.Fragments(model.PrimaryStream, doc, c.chunkSize()) {
		msgs = append(msgs, &model.Request{Fragment: f})
	}
	return exchange(stream, msgs)
}

// Inspect returns the sniffed MIME type and extension of b.
func (c *Client) Inspect(ctx context.Context, b []byte) (mime, ext string, err error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	var header metadata.MD
	reply, err := c.client.Inspect(ctx, wrapperspb.Bytes(b), grpc.Header(&header))
	if err != nil {
		return "", "", mapRPC(err, nil)
	}
	if v := header.Get(HeaderExtension); len(v) > 0 {
		ext = v[0]
	}
	return reply.GetValue(), ext, nil
}

// exchange sends msgs, half-closes and reassembles stream 0 of the reply.
// The result is checked against the CID trailer.
func exchange(stream DocumentClientStream, msgs []*model.Request) ([]byte, error) {
	for _, m := range msgs {
		if err := stream.Send(m); err != nil {
			// io.EOF means the server ended the call; its status comes from Recv.
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, mapRPC(err, nil)
		}
	}
	if err := stream.CloseSend(); err != nil {
		return nil, mapRPC(err, nil)
	}

	r := intake.NewReassembler(nil, intake.Limits{})
	defer r.Release()
	for {
		msg, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, mapRPC(err, stream.Trailer())
		}
		if msg.Fragment == nil {
			return nil, model.NewError(model.KindInternal, "reply message without fragment")
		}
		if err := r.Append(msg.Fragment.Stream, msg.Fragment.Data); err != nil {
			return nil, err
		}
	}

	body, ok := r.Streams().Get(model.PrimaryStream)
	if !ok {
		return nil, model.NewError(model.KindInternal, "reply carried no document")
	}
	out := bytes.Clone(body)
	if want := stream.Trailer().Get(TrailerCID); len(want) > 0 {
		if err := cidutil.Verify(out, want[0]); err != nil {
			return nil, fmt.Errorf("rpc: reply integrity: %w", err)
		}
	}
	return out, nil
}

func (c *Client) chunkSize() int {
	if c.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return c.ChunkSize
}

func (c *Client) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.Timeout)
}
