// Package authz contiene el contexto de sesión con los permisos del usuario autenticado.
// La sesión se construye una vez por login (o al invalidarse la caché) y se inyecta por
// request; no existe un almacén global de permisos.
package authz

import "sort"

// Session permisos efectivos de un usuario para una sesión autenticada.
type Session struct {
	UserID      string
	CompanyID   string
	RoleID      string
	Permissions []string

	set map[string]struct{}
}

// NewSession construye la sesión deduplicando permisos.
func NewSession(userID, companyID, roleID string, permissions []string) *Session {
	s := &Session{UserID: userID, CompanyID: companyID, RoleID: roleID}
	s.set = make(map[string]struct{}, len(permissions))
	for _, p := range permissions {
		if _, ok := s.set[p]; ok {
			continue
		}
		s.set[p] = struct{}{}
		s.Permissions = append(s.Permissions, p)
	}
	sort.Strings(s.Permissions)
	return s
}

// HasPermission indica si la sesión incluye el permiso requerido.
func (s *Session) HasPermission(required string) bool {
	if s == nil {
		return false
	}
	if s.set == nil {
		s.set = make(map[string]struct{}, len(s.Permissions))
		for _, p := range s.Permissions {
			s.set[p] = struct{}{}
		}
	}
	_, ok := s.set[required]
	return ok
}

// HasAnyPermission true si tiene al menos uno. Con lista vacía devuelve false.
func (s *Session) HasAnyPermission(required ...string) bool {
	for _, p := range required {
		if s.HasPermission(p) {
			return true
		}
	}
	return false
}

// HasAllPermissions true si tiene todos. Con lista vacía devuelve true.
func (s *Session) HasAllPermissions(required ...string) bool {
	for _, p := range required {
		if !s.HasPermission(p) {
			return false
		}
	}
	return true
}
