package wordpress

import "github.com/tidwall/gjson"

// Medium is a value view over a raw media-library payload.
type Medium struct {
	raw gjson.Result
}

// NewMedium wraps a raw media payload.
func NewMedium(raw []byte) Medium {
	return Medium{raw: gjson.ParseBytes(raw)}
}

// ID returns the numeric media id.
func (m Medium) ID() int64 { return m.raw.Get("id").Int() }

// Slug returns the media slug.
func (m Medium) Slug() string { return m.raw.Get("slug").String() }

// URL returns the canonical asset URL. WordPress stores it in the
// guid.rendered field of the media record.
func (m Medium) URL() string { return m.raw.Get("guid.rendered").String() }

// Link returns the attachment page link.
func (m Medium) Link() string { return m.raw.Get("link").String() }

// Title returns the rendered title.
func (m Medium) Title() string { return m.raw.Get("title.rendered").String() }

// User is a value view over a raw user payload.
type User struct {
	raw gjson.Result
}

// NewUser wraps a raw user payload.
func NewUser(raw []byte) User {
	return User{raw: gjson.ParseBytes(raw)}
}

// ID returns the numeric user id.
func (u User) ID() int64 { return u.raw.Get("id").Int() }

// Name returns the display name.
func (u User) Name() string { return u.raw.Get("name").String() }

// Email returns the e-mail address. Only present when the user was
// fetched in edit context.
func (u User) Email() string { return u.raw.Get("email").String() }

// Slug returns the author slug.
func (u User) Slug() string { return u.raw.Get("slug").String() }
