package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/stock-api/internal/domain"
	"github.com/jhoicas/stock-api/internal/domain/entity"
	"github.com/jhoicas/stock-api/internal/domain/repository"
)

type companyRepo struct{ d *db }

func (r *companyRepo) Create(_ context.Context, c *entity.Company) error {
	return r.d.do(func(st *state) error {
		if _, ok := st.companies[c.ID]; ok {
			return domain.ErrDuplicate
		}
		st.companies[c.ID] = *c
		return nil
	})
}

func (r *companyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	var out *entity.Company
	err := r.d.do(func(st *state) error {
		if c, ok := st.companies[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

type userRepo struct{ d *db }

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	return r.d.do(func(st *state) error {
		for _, existing := range st.users {
			if strings.EqualFold(existing.Email, u.Email) {
				return domain.ErrEmailAlreadyExists
			}
		}
		st.users[u.ID] = *u
		return nil
	})
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.d.do(func(st *state) error {
		if u, ok := st.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.d.do(func(st *state) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				u := u
				out = &u
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *userRepo) Update(_ context.Context, u *entity.User) error {
	return r.d.do(func(st *state) error {
		if _, ok := st.users[u.ID]; !ok {
			return domain.ErrNotFound
		}
		st.users[u.ID] = *u
		return nil
	})
}

func (r *userRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.User, error) {
	var out []*entity.User
	err := r.d.do(func(st *state) error {
		for _, u := range st.users {
			if u.CompanyID == companyID {
				u := u
				out = append(out, &u)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, err
}

func (r *userRepo) ListIDsByRole(_ context.Context, roleID string) ([]string, error) {
	var ids []string
	err := r.d.do(func(st *state) error {
		for _, u := range st.users {
			if u.RoleID == roleID {
				ids = append(ids, u.ID)
			}
		}
		return nil
	})
	return sortStrings(ids), err
}

type roleRepo struct{ d *db }

func (r *roleRepo) Create(_ context.Context, role *entity.Role) error {
	return r.d.do(func(st *state) error {
		for _, existing := range st.roles {
			if existing.CompanyID == role.CompanyID && strings.EqualFold(existing.Name, role.Name) {
				return domain.ErrDuplicate
			}
		}
		st.roles[role.ID] = cloneRole(*role)
		return nil
	})
}

func (r *roleRepo) GetByID(_ context.Context, id string) (*entity.Role, error) {
	var out *entity.Role
	err := r.d.do(func(st *state) error {
		if role, ok := st.roles[id]; ok {
			c := cloneRole(role)
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *roleRepo) Update(_ context.Context, role *entity.Role) error {
	return r.d.do(func(st *state) error {
		if _, ok := st.roles[role.ID]; !ok {
			return domain.ErrNotFound
		}
		st.roles[role.ID] = cloneRole(*role)
		return nil
	})
}

func (r *roleRepo) ListByCompany(_ context.Context, companyID string) ([]*entity.Role, error) {
	var out []*entity.Role
	err := r.d.do(func(st *state) error {
		for _, role := range st.roles {
			if role.CompanyID == companyID {
				c := cloneRole(role)
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r *roleRepo) Delete(_ context.Context, id string) error {
	return r.d.do(func(st *state) error {
		if _, ok := st.roles[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.roles, id)
		return nil
	})
}

type auditRepo struct{ d *db }

func (r *auditRepo) Create(_ context.Context, e *entity.AuditLog) error {
	return r.d.do(func(st *state) error {
		st.audit = append(st.audit, *e)
		return nil
	})
}

func (r *auditRepo) ListByCompany(_ context.Context, companyID string, page repository.Page) ([]*entity.AuditLog, int, error) {
	var all []*entity.AuditLog
	err := r.d.do(func(st *state) error {
		for i := len(st.audit) - 1; i >= 0; i-- {
			if st.audit[i].CompanyID == companyID {
				e := st.audit[i]
				all = append(all, &e)
			}
		}
		return nil
	})
	list, total := paginate(all, page)
	return list, total, err
}
