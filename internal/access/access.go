// Package access decides who may read or change a canvas.
package access

import "github.com/rogerio-castellano/pixel-canvas/internal/models"

// Viewer identifies the party behind a request. The zero value is an
// anonymous visitor.
type Viewer struct {
	UserID   int
	Username string
}

// Anonymous is the unauthenticated viewer.
var Anonymous = Viewer{}

// Authenticated reports whether the viewer is a logged-in user.
func (v Viewer) Authenticated() bool {
	return v.UserID > 0
}

// Owns reports whether the viewer is the authenticated owner of c.
func (v Viewer) Owns(c models.Canvas) bool {
	return v.Authenticated() && c.OwnerID == v.UserID
}

// CanView reports whether v may see c: public canvases are visible to
// everyone, private ones only to their owner.
func CanView(c models.Canvas, v Viewer) bool {
	return c.IsPublic || v.Owns(c)
}

// CanMutate reports whether v may edit or delete c.
func CanMutate(c models.Canvas, v Viewer) bool {
	return v.Owns(c)
}
