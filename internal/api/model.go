package api

import "livechat/internal/protocol"

// Chat is a conversation summary.
type Chat struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	LastMessage     string             `json:"lastMessage"`
	LastMessageTime protocol.Timestamp `json:"lastMessageTime"`
	UnreadCount     *int               `json:"unreadCount"`
}

type LoginResponse struct {
	Success  bool   `json:"success"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

type ChatsResponse struct {
	Success bool   `json:"success"`
	Chats   []Chat `json:"chats"`
}

type ChatDetailResponse struct {
	Success  bool               `json:"success"`
	Chat     Chat               `json:"chat"`
	Messages []protocol.Message `json:"messages"`
}

type SendMessageResponse struct {
	Success bool             `json:"success"`
	Message protocol.Message `json:"message"`
}

type loginRequest struct {
	Username string `json:"username"`
}

type sendMessageRequest struct {
	Text     string `json:"text"`
	SenderID string `json:"senderId"`
}

// errorBody is the error shape the chat server answers with on non-2xx.
type errorBody struct {
	Detail any `json:"detail"`
}
