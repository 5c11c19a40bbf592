package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/capstone/internal/common"
	"github.com/dmitrijs2005/capstone/internal/server/access"
	"github.com/dmitrijs2005/capstone/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const principalKey ctxKey = "principal"

// PrincipalFromContext returns the principal attached by the token
// interceptor, if the caller sent one.
func PrincipalFromContext(ctx context.Context) (*access.Principal, bool) {
	pr, ok := ctx.Value(principalKey).(*access.Principal)
	return pr, ok && pr != nil
}

// principalInterceptor resolves an optional principal token. A call without
// a token runs anonymously; a call with a bad token is rejected.
func (s *GRPCServer) principalInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	var token string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
			token = values[0]
		}
	}
	if token == "" {
		return handler(ctx, req)
	}

	pr, err := auth.PrincipalFromToken(token, s.jwtSecret)
	if err != nil {
		s.logger.Debug(ctx, "rejected principal token", "method", info.FullMethod, "error", err)
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	return handler(context.WithValue(ctx, principalKey, pr), req)
}

// errorInterceptor turns domain errors into gRPC status codes.
func (s *GRPCServer) errorInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	resp, err := handler(ctx, req)
	if err == nil {
		return resp, nil
	}
	if _, ok := status.FromError(err); ok {
		return nil, err
	}
	code := codeOf(err)
	if code == codes.Internal {
		s.logger.Error(ctx, "request failed", "method", info.FullMethod, "error", err)
		return nil, status.Error(code, "internal error")
	}
	return nil, status.Error(code, err.Error())
}

func codeOf(err error) codes.Code {
	switch {
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrUnknownEntity):
		return codes.NotFound
	case errors.Is(err, common.ErrorForbidden):
		return codes.PermissionDenied
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return codes.Unauthenticated
	case errors.Is(err, common.ErrAlreadyExists):
		return codes.AlreadyExists
	case errors.Is(err, common.ErrConnectionTimeout):
		return codes.Unavailable
	case errors.Is(err, common.ErrInvalidChoices):
		return codes.InvalidArgument
	case errors.Is(err, common.ErrTeamFull),
		errors.Is(err, common.ErrAlreadyOnTeam),
		errors.Is(err, common.ErrInviteExpired),
		errors.Is(err, common.ErrNotModifiable):
		return codes.FailedPrecondition
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	}
	return codes.Internal
}
