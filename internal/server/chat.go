package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatRequest is the incoming WebSocket message format. Exactly one of
// DocumentID or CollectionID selects the question scope.
type chatRequest struct {
	Type         string `json:"type"` // "ask" or "search"
	Question     string `json:"question"`
	DocumentID   string `json:"document_id,omitempty"`
	CollectionID string `json:"collection_id,omitempty"`
	TopK         int    `json:"top_k,omitempty"`
}

// chatResponse is the outgoing WebSocket message format.
type chatResponse struct {
	Type                  string   `json:"type"` // "answer", "results" or "error"
	Content               string   `json:"content,omitempty"`
	ContributingDocuments []string `json:"contributing_document_ids,omitempty"`
	SkippedDocuments      int      `json:"skipped_documents,omitempty"`
	Results               any      `json:"results,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	user := userID(r)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("server: websocket read: %v", err)
			}
			return
		}

		var req chatRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendChatError(conn, "invalid message format")
			continue
		}

		if req.Question == "" {
			s.sendChatError(conn, "question is required")
			continue
		}
		if (req.DocumentID == "") == (req.CollectionID == "") {
			s.sendChatError(conn, "exactly one of document_id or collection_id is required")
			continue
		}

		switch req.Type {
		case "ask", "":
			s.handleChatAsk(conn, r, req, user)
		case "search":
			s.handleChatSearch(conn, r, req, user)
		default:
			s.sendChatError(conn, "unknown message type: "+req.Type)
		}
	}
}

func (s *Server) handleChatAsk(conn *websocket.Conn, r *http.Request, req chatRequest, user string) {
	ctx := r.Context()

	if req.DocumentID != "" {
		ans, err := s.engine.AnswerDocument(ctx, req.Question, req.DocumentID, user)
		if err != nil {
			s.sendChatError(conn, "question failed: "+err.Error())
			return
		}
		s.sendChat(conn, chatResponse{Type: "answer", Content: ans})
		return
	}

	result, err := s.engine.AnswerCollection(ctx, req.Question, req.CollectionID, user)
	if err != nil {
		s.sendChatError(conn, "question failed: "+err.Error())
		return
	}
	s.sendChat(conn, chatResponse{
		Type:                  "answer",
		Content:               result.Answer,
		ContributingDocuments: result.ContributingDocuments,
		SkippedDocuments:      result.SkippedDocuments,
	})
}

func (s *Server) handleChatSearch(conn *websocket.Conn, r *http.Request, req chatRequest, user string) {
	ctx := r.Context()
	topK := req.TopK
	if topK <= 0 {
		topK = 5
	}

	if req.DocumentID != "" {
		hits, err := s.engine.SearchDocument(ctx, req.Question, req.DocumentID, user, topK)
		if err != nil {
			s.sendChatError(conn, "search failed: "+err.Error())
			return
		}
		s.sendChat(conn, chatResponse{Type: "results", Results: hits})
		return
	}

	hits, err := s.engine.SearchCollection(ctx, req.Question, req.CollectionID, user, topK)
	if err != nil {
		s.sendChatError(conn, "search failed: "+err.Error())
		return
	}
	s.sendChat(conn, chatResponse{Type: "results", Results: hits})
}

func (s *Server) sendChat(conn *websocket.Conn, resp chatResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("server: websocket write: %v", err)
	}
}

func (s *Server) sendChatError(conn *websocket.Conn, message string) {
	s.sendChat(conn, chatResponse{Type: "error", Content: message})
}
