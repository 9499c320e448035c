package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/AnshRaj112/serenify-mood/pkg/clientip"
)

// Chat completions cost upstream tokens, so they get their own per-IP
// budget: 10 req/min, burst 5.
const (
	chatRateLimitRPS   = 10.0 / 60
	chatRateLimitBurst = 5
)

// ChatRateLimitMessage is returned once a client spent its chat budget.
const ChatRateLimitMessage = "Too many chat requests. Please slow down."

var chatPaths = map[string]bool{
	"/api/chat":        true,
	"/api/chat-simple": true,
}

// ChatBudget is the per-client chat budget. The HTTP chat routes and the
// chat socket draw from the same one.
type ChatBudget struct {
	limiter *keyedLimiter
}

func NewChatBudget() *ChatBudget {
	return &ChatBudget{limiter: newKeyedLimiter(rate.Limit(chatRateLimitRPS), chatRateLimitBurst)}
}

// Allow spends one request for key (a client IP).
func (b *ChatBudget) Allow(key string) bool {
	return b.limiter.Allow(key)
}

// ChatRateLimit applies budget to POST /api/chat and /api/chat-simple.
// The socket handler checks the same budget per message frame.
func ChatRateLimit(trustProxy bool, budget *ChatBudget) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || !chatPaths[strings.TrimSuffix(r.URL.Path, "/")] {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(chatRateLimitBurst))
			if !budget.Allow(clientip.FromRequest(r, trustProxy)) {
				w.Header().Set("X-RateLimit-Remaining", "0")
				tooManyRequests(w, ChatRateLimitMessage)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
