package api

import (
	"net/http"

	"twitterapi/internal/domain"
	"twitterapi/pkg/logger"
)

type TweetHandler struct {
	service domain.TweetService
	logger  logger.Logger
}

func NewTweetHandler(service domain.TweetService, logger logger.Logger) *TweetHandler {
	return &TweetHandler{
		service: service,
		logger:  logger,
	}
}

func (h *TweetHandler) GetTweets(w http.ResponseWriter, r *http.Request) {
	tweets, err := h.service.GetTweets(r.Context())
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, tweets)
}

func (h *TweetHandler) CreateTweet(w http.ResponseWriter, r *http.Request) {
	var req domain.NewTweet
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Invalid tweet body", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tweet, err := h.service.CreateTweet(r.Context(), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, tweet)
}

func (h *TweetHandler) GetTweet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tweet_id")
	if !ok {
		return
	}

	tweet, err := h.service.GetTweetByID(r.Context(), id)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, tweet)
}

func (h *TweetHandler) UpdateTweet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tweet_id")
	if !ok {
		return
	}

	var req domain.UpdateTweet
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Invalid tweet update body", map[string]interface{}{"id": id, "error": err.Error()})
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tweet, err := h.service.UpdateTweet(r.Context(), id, &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, tweet)
}

func (h *TweetHandler) DeleteTweet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "tweet_id")
	if !ok {
		return
	}

	res, err := h.service.DeleteTweet(r.Context(), id)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *TweetHandler) GetUserTweets(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}

	tweets, err := h.service.GetTweetsByUser(r.Context(), id)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, tweets)
}

func (h *TweetHandler) RegisterRoutes(mux *http.ServeMux, limit Limit) {
	mux.HandleFunc("GET /{$}", h.GetTweets)
	mux.Handle("POST /post", limit(GroupWrite, http.HandlerFunc(h.CreateTweet)))
	mux.HandleFunc("GET /tweets/{tweet_id}", h.GetTweet)
	mux.Handle("PUT /tweets/{tweet_id}/update", limit(GroupWrite, http.HandlerFunc(h.UpdateTweet)))
	mux.Handle("DELETE /tweets/{tweet_id}/delete", limit(GroupWrite, http.HandlerFunc(h.DeleteTweet)))
	mux.HandleFunc("GET /users/{user_id}/tweets", h.GetUserTweets)
}
