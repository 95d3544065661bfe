package rpc

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"docustream.dev/docustream/model"
)

// Trailer keys set by the server.
const (
	TrailerCID       = "docustream-cid"
	TrailerErrorKind = "docustream-error-kind"
	TrailerDetected  = "docustream-detected"
	HeaderExtension  = "docustream-extension"
)

func codeFor(k model.Kind) codes.Code {
	switch k {
	case model.KindMissingRequiredPart:
		return codes.NotFound
	case model.KindUnsupportedContainerFormat, model.KindMalformedRequest, model.KindMalformedDocument:
		return codes.InvalidArgument
	case model.KindLimitExceeded:
		return codes.ResourceExhausted
	default:
		return codes.Internal
	}
}

// mapErr converts a call error into a status error and records the
// structured kind in the trailer.
func mapErr(stream grpc.ServerStream, err error) error {
	if err == nil {
		return nil
	}
	var e *model.Error
	if errors.As(err, &e) {
		md := metadata.Pairs(TrailerErrorKind, string(e.Kind))
		if e.Detected != "" {
			md.Append(TrailerDetected, e.Detected)
		}
		stream.SetTrailer(md)
		return status.Error(codeFor(e.Kind), e.Error())
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(codes.Internal, err.Error())
}

// mapRPC rebuilds a *model.Error from a status error and its trailer.
// Transport errors without a kind are returned unchanged.
func mapRPC(err error, trailer metadata.MD) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	kinds := trailer.Get(TrailerErrorKind)
	if len(kinds) == 0 {
		return err
	}
	e := &model.Error{
		Kind:    model.ParseKind(kinds[0]),
		Message: strings.TrimPrefix(st.Message(), kinds[0]+": "),
	}
	if d := trailer.Get(TrailerDetected); len(d) > 0 {
		e.Detected = d[0]
	}
	return e
}
