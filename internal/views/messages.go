package views

import "github.com/dom/tour-of-heroes/internal/message"

// MessagesView shows the status log.
type MessagesView struct {
	messages *message.Service
}

func NewMessagesView(messages *message.Service) *MessagesView {
	return &MessagesView{messages: messages}
}

func (v *MessagesView) Messages() []string {
	return v.messages.Messages()
}

func (v *MessagesView) Clear() {
	v.messages.Clear()
}
