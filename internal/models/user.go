// Package models defines the core data structures for users, their inbox
// messages and the session claims carried between requests.
package models

import "time"

// User represents an account owner together with the messages
// anonymous visitors have left for them.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id" bson:"_id"`
	// Username is the public handle used in the profile link.
	Username string `json:"username" bson:"username"`
	// Email is the lower-cased address verification codes are sent to.
	Email string `json:"email" bson:"email"`
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string `json:"-" bson:"password"`
	// VerifyCode is the one-time code sent during signup.
	VerifyCode string `json:"-" bson:"verifyCode"`
	// VerifyCodeExpiry is the moment VerifyCode stops being accepted.
	VerifyCodeExpiry time.Time `json:"-" bson:"verifyCodeExpiry"`
	// IsVerified reports whether the email address has been confirmed.
	IsVerified bool `json:"isVerified" bson:"isVerified"`
	// IsAcceptingMessages gates anonymous submissions.
	IsAcceptingMessages bool `json:"isAcceptingMessages" bson:"isAcceptingMessages"`
	// Messages is the inbox in insertion order.
	Messages []Message `json:"messages" bson:"messages"`
	// CreatedAt is the signup timestamp.
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Session returns the fixed claims set describing u.
func (u *User) Session() SessionUser {
	return SessionUser{
		ID:                  u.ID,
		Username:            u.Username,
		IsVerified:          u.IsVerified,
		IsAcceptingMessages: u.IsAcceptingMessages,
	}
}

// Message is an anonymous note stored inside its owner's record.
type Message struct {
	// ID is unique within the owning user.
	ID string `json:"id" bson:"id"`
	// Content is the message text.
	Content string `json:"content" bson:"content"`
	// CreatedAt is the submission time in UTC.
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// SessionUser is the claims set embedded in a session token.
type SessionUser struct {
	ID                  string `json:"id"`
	Username            string `json:"username"`
	IsVerified          bool   `json:"isVerified"`
	IsAcceptingMessages bool   `json:"isAcceptingMessages"`
}
