package service

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("sokoban.service")

var (
	movesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sokoban_moves_total",
		Help: "Player moves attempted, by outcome",
	}, []string{"outcome"})

	pushesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sokoban_crate_pushes_total",
		Help: "Moves that pushed a crate",
	})

	levelsWonTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sokoban_levels_won_total",
		Help: "Levels solved, by level id",
	}, []string{"level"})

	deadlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sokoban_deadlocks_total",
		Help: "Moves that left a level deadlocked, by level id",
	}, []string{"level"})

	restartsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sokoban_restarts_total",
		Help: "Level restarts",
	})

	sessionsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sokoban_sessions_created_total",
		Help: "Sessions created",
	})
)

// startSpan opens a span for a service operation on a session
func startSpan(ctx context.Context, name, sessionID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "GameService."+name,
		trace.WithAttributes(attribute.String("session.id", sessionID)),
	)
}

// endSpan records err on span, if any, and ends it
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
