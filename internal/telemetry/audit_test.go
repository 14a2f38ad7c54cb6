package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"party-service/internal/mocks"
)

func TestEmitPublishesEnvelope(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := NewAuditEmitter(publisher, "audit_log.party", "party-service", "test")

	uid := "host-1"
	publisher.On("PublishJSON", mock.Anything, "audit_log.party", mock.MatchedBy(func(env AuditEnvelope) bool {
		return env.SchemaVersion == 1 &&
			env.EventType == "audit_log" &&
			env.Service == "party-service" &&
			env.Environment == "test" &&
			env.RequestID == "req-1" &&
			env.UserID != nil && *env.UserID == uid &&
			env.Payload.Level == "INFO" &&
			env.Payload.Text == "party created: p1"
	}), mock.Anything).Return(nil).Once()

	emitter.Emit(context.Background(), "INFO", "party created: p1", "req-1", &uid)

	publisher.AssertExpectations(t)
}

func TestEmitPublishFailureIsSwallowed(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := NewAuditEmitter(publisher, "audit_log.party", "party-service", "test")

	publisher.On("PublishJSON", mock.Anything, "audit_log.party", mock.Anything, mock.Anything).Return(assert.AnError).Once()

	emitter.Emit(context.Background(), "ERROR", "boom", "req-2", nil)

	publisher.AssertExpectations(t)
}

func TestEmitWithoutPublisherIsNoop(t *testing.T) {
	emitter := NewAuditEmitter(nil, "audit_log.party", "party-service", "test")
	emitter.Emit(context.Background(), "INFO", "ignored", "req-3", nil)

	var missing *AuditEmitter
	missing.Emit(context.Background(), "INFO", "ignored", "req-4", nil)
}
