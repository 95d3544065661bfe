package rpc

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"docustream.dev/docustream/cidutil"
	"docustream.dev/docustream/convert"
	"docustream.dev/docustream/intake"
	"docustream.dev/docustream/model"
	"docustream.dev/docustream/pack"
	"docustream.dev/docustream/render"
	"docustream.dev/docustream/sniff"
)

// Server exposes the templating pipeline over the Word gRPC service.
//
// Each call owns its intake and buffers; Server itself is read-only after
// construction and safe for concurrent calls.
type Server struct {
	UnimplementedWordServer

	Pipeline  *render.Pipeline
	Converter convert.Converter
	Limits    intake.Limits

	// ChunkSize bounds reply fragments. Zero sends the document in one message.
	ChunkSize int

	Logger *zap.Logger
}

// NewGRPCServer returns a gRPC server with the Word and health services
// registered. maxMsgBytes sets both send and receive limits when non-zero.
func NewGRPCServer(srv *Server, maxMsgBytes int, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	if maxMsgBytes > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(maxMsgBytes), grpc.MaxSendMsgSize(maxMsgBytes))
	}
	s := grpc.NewServer(opts...)
	RegisterWordServer(s, srv)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return s, hs
}

func (s *Server) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Server) pipeline() *render.Pipeline {
	if s.Pipeline == nil {
		return render.New("")
	}
	return s.Pipeline
}

func (s *Server) Apply(stream DocumentServerStream) error {
	return s.handle(stream, "Apply", intake.Options{Limits: s.Limits},
		func(ctx context.Context, p *intake.Payload, logger *zap.Logger) ([]byte, error) {
			res, err := s.pipeline().Run(ctx, p)
			if err != nil {
				return nil, err
			}
			logger.Debug("rendered",
				zap.Int("text_nodes", res.Stats.TextNodes),
				zap.Int("image_nodes", res.Stats.ImageNodes))
			return res.Document, nil
		})
}

func (s *Server) Convert(stream DocumentServerStream) error {
	if s.Converter == nil {
		return status.Error(codes.Unimplemented, "conversion is not configured")
	}
	return s.handle(stream, "Convert", intake.Options{Limits: s.Limits, FragmentsOnly: true},
		func(ctx context.Context, p *intake.Payload, _ *zap.Logger) ([]byte, error) {
			if _, err := s.pipeline().Validate(p.Primary()); err != nil {
				return nil, err
			}
			return s.Converter.Convert(ctx, p.Primary())
		})
}

func (s *Server) Inspect(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	mime, ext := sniff.Describe(in.GetValue())
	if err := grpc.SetHeader(ctx, metadata.Pairs(HeaderExtension, ext)); err != nil {
		return nil, err
	}
	return wrapperspb.String(mime), nil
}

type runFunc func(ctx context.Context, p *intake.Payload, logger *zap.Logger) ([]byte, error)

// handle drains the inbound stream, runs the call and streams the result.
// Nothing is sent unless run succeeds; call buffers are released on every path.
func (s *Server) handle(stream DocumentServerStream, method string, opts intake.Options, run runFunc) (err error) {
	ctx := stream.Context()
	start := time.Now()
	logger := s.logger().With(zap.String("method", method), zap.String("call", uuid.NewString()))
	logger.Debug("call started")

	in := intake.New(logger, opts)
	defer in.Release()

	var sent int
	defer func() {
		values, streams, total := in.Stats()
		fields := []zap.Field{
			zap.Int("values", values),
			zap.Int("streams", streams),
			zap.Int64("bytes_in", total),
			zap.Int("messages_out", sent),
			zap.Duration("took", time.Since(start)),
		}
		if err != nil {
			logger.Warn("call failed", append(fields, zap.String("kind", string(model.KindOf(err))), zap.Error(err))...)
			err = mapErr(stream, err)
			return
		}
		logger.Info("call finished", fields...)
	}()

	for {
		msg, rerr := stream.Recv()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return rerr
		}
		if err := in.Accept(msg); err != nil {
			return err
		}
	}

	payload, err := in.Finalize()
	if err != nil {
		return err
	}
	out, err := run(ctx, payload, logger)
	if err != nil {
		return err
	}

	stream.SetTrailer(metadata.Pairs(TrailerCID, cidutil.String(out)))
	sent, err = pack.Send(stream, model.PrimaryStream, out, s.ChunkSize)
	return err
}
