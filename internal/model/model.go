// Package model defines domain entities shared by the session store, API client and CLI.
package model

import (
	"slices"
	"time"
)

// Credentials is the login exchange input.
type Credentials struct {
	Username string
	Password string
}

// Profile is the decoded principal behind an access token.
type Profile struct {
	UserID      string        `json:"userId"`
	Email       string        `json:"email"`
	FullName    string        `json:"fullName"`
	Role        string        `json:"role"`
	Permissions PermissionSet `json:"permissions"`
	ExpiresAt   time.Time     `json:"expiresAt"`
}

// Expired reports whether the profile's expiry is at or before now.
// A zero ExpiresAt is treated as expired.
func (p *Profile) Expired(now time.Time) bool {
	return p == nil || p.ExpiresAt.IsZero() || !now.Before(p.ExpiresAt)
}

// Session is the persisted record: the access token plus the decoded profile (nil until decoded).
type Session struct {
	AccessToken string   `json:"accessToken"`
	Profile     *Profile `json:"profile"`
}

// PermissionSet is an unordered set of opaque permission strings.
// Membership is literal; there is no hierarchy.
type PermissionSet []string

// Has reports whether p is in the set.
func (s PermissionSet) Has(p string) bool { return slices.Contains(s, p) }

// Clone returns a non-nil copy.
func (s PermissionSet) Clone() PermissionSet {
	out := make(PermissionSet, len(s))
	copy(out, s)
	return out
}

// Genre is a catalog genre.
type Genre struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
}

// Platform is a streaming platform.
type Platform struct {
	ID      int64  `json:"id"`
	Nombre  string `json:"nombre"`
	LogoURL string `json:"logoUrl,omitempty"`
}

// Director is a person directing movies.
type Director struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
	Imagen string `json:"imagen,omitempty"`
}

// Actor is a person available for casting.
type Actor struct {
	ID        int64  `json:"id"`
	Nombre    string `json:"nombre"`
	ImagenURL string `json:"imagenUrl,omitempty"`
}

// CastMember is an actor's role in a movie.
type CastMember struct {
	ID            int64  `json:"id,omitempty"`
	NombrePersona string `json:"nombrePersona"`
	Personaje     string `json:"personaje"`
	Orden         int    `json:"orden,omitempty"`
	ImagenPersona string `json:"imagenPersona,omitempty"`
}

// Movie is a catalog entry as returned by the backend.
type Movie struct {
	ID              int64        `json:"id"`
	Titulo          string       `json:"titulo"`
	Sinopsis        string       `json:"sinopsis"`
	DuracionMinutos int          `json:"duracionMinutos"`
	FechaEstreno    string       `json:"fechaEstreno"` // ISO date
	Poster          string       `json:"poster,omitempty"`
	Activa          bool         `json:"activa"`
	Director        *Director    `json:"director,omitempty"`
	Generos         []Genre      `json:"generos,omitempty"`
	Plataformas     []Platform   `json:"plataformas,omitempty"`
	Elenco          []CastMember `json:"elenco,omitempty"`
}

// CastEntry links a person to a role when creating or editing a movie.
type CastEntry struct {
	PersonaID int64  `json:"personaId"`
	Personaje string `json:"personaje"`
	Orden     int    `json:"orden"`
}

// MoviePayload is the create/update body sent as the "pelicula" JSON part.
type MoviePayload struct {
	Titulo          string      `json:"titulo"`
	Sinopsis        string      `json:"sinopsis"`
	DuracionMinutos int         `json:"duracionMinutos"`
	FechaEstreno    string      `json:"fechaEstreno"`
	DirectorID      int64       `json:"directorId"`
	GenerosIDs      []int64     `json:"generosIds"`
	PlataformasIDs  []int64     `json:"plataformasIds"`
	Elenco          []CastEntry `json:"elenco"`
}
