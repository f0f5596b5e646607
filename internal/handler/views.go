package handler

import (
	"time"

	"Synergy_Link/internal/model"
	"Synergy_Link/internal/service"
)

// userView is what other users may see. Email and device token stay private.
type userView struct {
	ID             string               `json:"id"`
	Status         string               `json:"status,omitempty"`
	Profile        model.Profile        `json:"profile"`
	OpenInnovation model.OpenInnovation `json:"open_innovation"`
}

type meView struct {
	userView
	Email                string `json:"email"`
	BusinessCardImageURL string `json:"business_card_image_url,omitempty"`
	HasDeviceToken       bool   `json:"has_device_token"`
	NextStep             string `json:"next_step,omitempty"`
}

func toUserView(u *model.User) userView {
	return userView{ID: u.ID, Profile: u.Profile, OpenInnovation: u.OpenInnovation}
}

func toUserViews(list []model.User) []userView {
	out := make([]userView, 0, len(list))
	for i := range list {
		out = append(out, toUserView(&list[i]))
	}
	return out
}

func toMeView(u *model.User, next string) meView {
	v := meView{
		userView:             toUserView(u),
		Email:                u.Email,
		BusinessCardImageURL: u.BusinessCardImageURL,
		HasDeviceToken:       u.DeviceToken != "",
		NextStep:             next,
	}
	v.Status = u.Status
	return v
}

type matchView struct {
	ID        string    `json:"id"`
	UserIDs   [2]string `json:"user_ids"`
	CreatedAt time.Time `json:"created_at"`
}

func toMatchView(m *model.Match) matchView {
	return matchView{ID: m.ID, UserIDs: [2]string{m.UserAID, m.UserBID}, CreatedAt: m.CreatedAt}
}

type matchSummaryView struct {
	MatchID   string    `json:"match_id"`
	Partner   userView  `json:"partner"`
	CreatedAt time.Time `json:"created_at"`
}

func toMatchSummaryViews(list []service.MatchSummary) []matchSummaryView {
	out := make([]matchSummaryView, 0, len(list))
	for _, s := range list {
		out = append(out, matchSummaryView{MatchID: s.MatchID, Partner: toUserView(s.Partner), CreatedAt: s.CreatedAt})
	}
	return out
}

type messageView struct {
	ID           string    `json:"id"`
	MatchID      string    `json:"match_id"`
	SenderID     string    `json:"sender_id"`
	SenderName   string    `json:"sender_name"`
	SenderAvatar string    `json:"sender_avatar,omitempty"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"created_at"`
}

func toMessageView(m *model.ChatMessage) messageView {
	return messageView{
		ID:           m.ID,
		MatchID:      m.MatchID,
		SenderID:     m.SenderID,
		SenderName:   m.SenderName,
		SenderAvatar: m.SenderAvatar,
		Text:         m.Text,
		CreatedAt:    m.CreatedAt,
	}
}

func toMessageViews(list []model.ChatMessage) []messageView {
	out := make([]messageView, 0, len(list))
	for i := range list {
		out = append(out, toMessageView(&list[i]))
	}
	return out
}

type communityView struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Icon           string     `json:"icon"`
	CreatorID      string     `json:"creator_id"`
	Status         string     `json:"status"`
	SupporterCount int        `json:"supporter_count"`
	MemberIDs      []string   `json:"member_ids,omitempty"`
	SupporterIDs   []string   `json:"supporter_ids,omitempty"`
	OfficializedAt *time.Time `json:"officialized_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toCommunityView(c *model.Community) communityView {
	return communityView{
		ID:             c.ID,
		Name:           c.Name,
		Description:    c.Description,
		Icon:           c.Icon,
		CreatorID:      c.CreatorID,
		Status:         c.Status,
		SupporterCount: c.SupporterCount,
		MemberIDs:      c.MemberIDs,
		SupporterIDs:   c.SupporterIDs,
		OfficializedAt: c.OfficializedAt,
		CreatedAt:      c.CreatedAt,
	}
}

func toCommunityViews(list []model.Community) []communityView {
	out := make([]communityView, 0, len(list))
	for i := range list {
		out = append(out, toCommunityView(&list[i]))
	}
	return out
}
