package negotiations

import (
	"context"
	"time"

	"github.com/cafeconecta/cafeconecta-backend/pkg/enums"
	"github.com/cafeconecta/cafeconecta-backend/pkg/gemini"
	"github.com/cafeconecta/cafeconecta-backend/pkg/logger"
)

// Fallback replies keep the conversation moving when the generator is
// unavailable or times out.
const (
	fallbackBuyerReply    = "Entendido. Gostaria de solicitar uma amostra deste lote para análise em nosso laboratório. Como podemos proceder?"
	fallbackProducerReply = "Este lote possui uma complexidade sensorial única e pontuação SCA garantida. Podemos agendar uma visita ou envio de amostra?"
	fallbackGenericReply  = "Entendido. Vamos alinhar os próximos passos da negociação."
)

// ReplyPrompt carries the context handed to the reply generator.
type ReplyPrompt struct {
	Persona    enums.UserRole
	LotSummary string
	History    []gemini.HistoryEntry
}

// ReplyGenerator produces the counterparty's simulated chat reply.
type ReplyGenerator interface {
	Reply(ctx context.Context, prompt ReplyPrompt) string
}

type chatGenerator interface {
	ChatReply(ctx context.Context, req gemini.ChatReplyRequest) (string, error)
}

// AutoReplier generates replies through Gemini and degrades to canned
// role-appropriate answers on any failure.
type AutoReplier struct {
	generator chatGenerator
	timeout   time.Duration
	logg      *logger.Logger
}

// NewAutoReplier wires a reply generator around the Gemini client. A nil
// client is allowed and always answers with the fallback lines.
func NewAutoReplier(client *gemini.Client, timeout time.Duration, logg *logger.Logger) *AutoReplier {
	replier := &AutoReplier{timeout: timeout, logg: logg}
	if client != nil {
		replier.generator = client
	}
	return replier
}

// Reply returns the text of the counterparty's next message. It never fails;
// generator errors fall back to a canned reply for the persona.
func (r *AutoReplier) Reply(ctx context.Context, prompt ReplyPrompt) string {
	if r.generator == nil {
		return fallbackReply(prompt.Persona)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	text, err := r.generator.ChatReply(ctx, gemini.ChatReplyRequest{
		Persona:    string(prompt.Persona),
		LotSummary: prompt.LotSummary,
		History:    prompt.History,
	})
	if err != nil || text == "" {
		if r.logg != nil && err != nil {
			r.logg.Warn(r.logg.WithField(ctx, "persona", string(prompt.Persona)), "auto reply generation failed, using fallback")
		}
		return fallbackReply(prompt.Persona)
	}
	return text
}

func fallbackReply(persona enums.UserRole) string {
	switch persona {
	case enums.UserRoleBuyer:
		return fallbackBuyerReply
	case enums.UserRoleProducer:
		return fallbackProducerReply
	}
	return fallbackGenericReply
}
