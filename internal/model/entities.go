package model

import "github.com/google/uuid"

// User is a registered account.
type User struct {
	ID       int64  `db:"id"`
	Name     string `db:"name"`
	Email    string `db:"email" validate:"omitempty,email"`
	Password string `db:"password"`
	Phone    string `db:"phone"`
}

func (*User) ClassName() string { return "User" }
func (*User) TableName() string { return "users" }
func (u *User) GetID() int64    { return u.ID }
func (u *User) SetID(id int64)  { u.ID = id }
func (u *User) Record() map[string]any {
	return withID(u.ID, map[string]any{
		"name":     u.Name,
		"email":    u.Email,
		"password": u.Password,
		"phone":    u.Phone,
	})
}

// Agent is a listing agent, optionally linked to a user account.
type Agent struct {
	ID     int64  `db:"id"`
	UserID int64  `db:"user_id"`
	Name   string `db:"name"`
	Email  string `db:"email" validate:"omitempty,email"`
	Phone  string `db:"phone"`
	Agency string `db:"agency"`
}

func (*Agent) ClassName() string { return "Agent" }
func (*Agent) TableName() string { return "agents" }
func (a *Agent) GetID() int64    { return a.ID }
func (a *Agent) SetID(id int64)  { a.ID = id }
func (a *Agent) Record() map[string]any {
	return withID(a.ID, map[string]any{
		"user_id": a.UserID,
		"name":    a.Name,
		"email":   a.Email,
		"phone":   a.Phone,
		"agency":  a.Agency,
	})
}

// Property is a listing. Price, Area and the room counts are never negative.
type Property struct {
	ID           int64   `db:"id"`
	UserID       int64   `db:"user_id"`
	AgentID      int64   `db:"agent_id"`
	Name         string  `db:"name"`
	Description  string  `db:"description"`
	PropertyType string  `db:"property_type"`
	ListingType  string  `db:"listing_type"`
	Price        float64 `db:"price" validate:"gte=0"`
	Country      string  `db:"country"`
	City         string  `db:"city"`
	Address      string  `db:"address"`
	Bedrooms     int     `db:"bedrooms" validate:"gte=0"`
	Bathrooms    int     `db:"bathrooms" validate:"gte=0"`
	Area         float64 `db:"area" validate:"gte=0"`
}

func (*Property) ClassName() string { return "Property" }
func (*Property) TableName() string { return "properties" }
func (p *Property) GetID() int64    { return p.ID }
func (p *Property) SetID(id int64)  { p.ID = id }
func (p *Property) Record() map[string]any {
	return withID(p.ID, map[string]any{
		"user_id":       p.UserID,
		"agent_id":      p.AgentID,
		"name":          p.Name,
		"description":   p.Description,
		"property_type": p.PropertyType,
		"listing_type":  p.ListingType,
		"price":         p.Price,
		"country":       p.Country,
		"city":          p.City,
		"address":       p.Address,
		"bedrooms":      p.Bedrooms,
		"bathrooms":     p.Bathrooms,
		"area":          p.Area,
	})
}

// PropertyImage is a picture attached to a property. ImageType separates
// e.g. "cover" from "gallery" shots.
type PropertyImage struct {
	ID         int64  `db:"id"`
	PropertyID int64  `db:"property_id"`
	ImageType  string `db:"image_type"`
	ImageURL   string `db:"image_url"`
}

func (*PropertyImage) ClassName() string { return "PropertyImage" }
func (*PropertyImage) TableName() string { return "property_images" }
func (i *PropertyImage) GetID() int64    { return i.ID }
func (i *PropertyImage) SetID(id int64)  { i.ID = id }
func (i *PropertyImage) Record() map[string]any {
	return withID(i.ID, map[string]any{
		"property_id": i.PropertyID,
		"image_type":  i.ImageType,
		"image_url":   i.ImageURL,
	})
}

// Wishlist links a user to a property they saved.
type Wishlist struct {
	ID         int64 `db:"id"`
	UserID     int64 `db:"user_id"`
	PropertyID int64 `db:"property_id"`
}

func (*Wishlist) ClassName() string { return "Wishlist" }
func (*Wishlist) TableName() string { return "wishlists" }
func (w *Wishlist) GetID() int64    { return w.ID }
func (w *Wishlist) SetID(id int64)  { w.ID = id }
func (w *Wishlist) Record() map[string]any {
	return withID(w.ID, map[string]any{
		"user_id":     w.UserID,
		"property_id": w.PropertyID,
	})
}

// Review rates a property and/or agent. A zero Rating means unrated.
type Review struct {
	ID         int64  `db:"id"`
	UserID     int64  `db:"user_id"`
	PropertyID int64  `db:"property_id"`
	AgentID    int64  `db:"agent_id"`
	Rating     int    `db:"rating" validate:"omitempty,min=1,max=5"`
	Comment    string `db:"comment"`
}

func (*Review) ClassName() string { return "Review" }
func (*Review) TableName() string { return "reviews" }
func (r *Review) GetID() int64    { return r.ID }
func (r *Review) SetID(id int64)  { r.ID = id }
func (r *Review) Record() map[string]any {
	return withID(r.ID, map[string]any{
		"user_id":     r.UserID,
		"property_id": r.PropertyID,
		"agent_id":    r.AgentID,
		"rating":      r.Rating,
		"comment":     r.Comment,
	})
}

// Transaction is a payment made by a user for a property.
type Transaction struct {
	ID         int64   `db:"id"`
	UserID     int64   `db:"user_id"`
	PropertyID int64   `db:"property_id"`
	Amount     float64 `db:"amount" validate:"gte=0"`
	Status     string  `db:"status"`
	Reference  string  `db:"reference"`
}

// SetDefaults assigns a random reference to a transaction that has none.
func (t *Transaction) SetDefaults() {
	if t.Reference == "" {
		t.Reference = uuid.NewString()
	}
}

func (*Transaction) ClassName() string { return "Transaction" }
func (*Transaction) TableName() string { return "transactions" }
func (t *Transaction) GetID() int64    { return t.ID }
func (t *Transaction) SetID(id int64)  { t.ID = id }
func (t *Transaction) Record() map[string]any {
	return withID(t.ID, map[string]any{
		"user_id":     t.UserID,
		"property_id": t.PropertyID,
		"amount":      t.Amount,
		"status":      t.Status,
		"reference":   t.Reference,
	})
}

// Subscription is a user's paid plan.
type Subscription struct {
	ID     int64   `db:"id"`
	UserID int64   `db:"user_id"`
	Plan   string  `db:"plan"`
	Amount float64 `db:"amount" validate:"gte=0"`
	Status string  `db:"status"`
}

func (*Subscription) ClassName() string { return "Subscription" }
func (*Subscription) TableName() string { return "subscriptions" }
func (s *Subscription) GetID() int64    { return s.ID }
func (s *Subscription) SetID(id int64)  { s.ID = id }
func (s *Subscription) Record() map[string]any {
	return withID(s.ID, map[string]any{
		"user_id": s.UserID,
		"plan":    s.Plan,
		"amount":  s.Amount,
		"status":  s.Status,
	})
}

// Room is a chat room between users.
type Room struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

func (*Room) ClassName() string { return "Room" }
func (*Room) TableName() string { return "rooms" }
func (r *Room) GetID() int64    { return r.ID }
func (r *Room) SetID(id int64)  { r.ID = id }
func (r *Room) Record() map[string]any {
	return withID(r.ID, map[string]any{
		"name": r.Name,
	})
}

// RoomParticipant is a user's membership in a room.
type RoomParticipant struct {
	ID     int64 `db:"id"`
	RoomID int64 `db:"room_id"`
	UserID int64 `db:"user_id"`
}

func (*RoomParticipant) ClassName() string { return "RoomParticipant" }
func (*RoomParticipant) TableName() string { return "room_participants" }
func (p *RoomParticipant) GetID() int64    { return p.ID }
func (p *RoomParticipant) SetID(id int64)  { p.ID = id }
func (p *RoomParticipant) Record() map[string]any {
	return withID(p.ID, map[string]any{
		"room_id": p.RoomID,
		"user_id": p.UserID,
	})
}

// Message is a chat message posted to a room.
type Message struct {
	ID       int64  `db:"id"`
	RoomID   int64  `db:"room_id"`
	SenderID int64  `db:"sender_id"`
	Content  string `db:"content"`
}

func (*Message) ClassName() string { return "Message" }
func (*Message) TableName() string { return "messages" }
func (m *Message) GetID() int64    { return m.ID }
func (m *Message) SetID(id int64)  { m.ID = id }
func (m *Message) Record() map[string]any {
	return withID(m.ID, map[string]any{
		"room_id":   m.RoomID,
		"sender_id": m.SenderID,
		"content":   m.Content,
	})
}
