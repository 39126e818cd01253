package main

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/ranorsolutions/svc-routing-go/pkg/auth"
	"github.com/ranorsolutions/svc-routing-go/pkg/module"
	"github.com/ranorsolutions/svc-routing-go/pkg/route"
	"github.com/ranorsolutions/svc-routing-go/pkg/service"
	"github.com/ranorsolutions/svc-routing-go/pkg/validation"
)

var errUserNotFound = errors.New("user not found")

type user struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Users is an in-memory user directory. One instance serves every route of the module.
type Users struct {
	svc    *service.Service
	mu     sync.RWMutex
	nextID int
	users  map[int]user
}

func newUsers(svc *service.Service) *Users {
	return &Users{svc: svc, nextID: 1, users: map[int]user{}}
}

// registerUsers declares the users module on the service's store.
func registerUsers(svc *service.Service) {
	m := module.New(svc.Store, "users", func() *Users { return newUsers(svc) }).
		BasePath("/users").
		Auth(auth.Config{Mode: auth.ModeOptional}).
		Params(validation.Schema{"id": "numeric"})

	m.Get("", (*Users).List).
		Query(validation.Schema{"limit": "omitempty,numeric"}).
		Describe("List users", "api", "users")
	m.Get("/:id", (*Users).Get).
		Describe("Get a user", "api", "users")
	m.Handle(module.Config[Users]{
		Method:  http.MethodPost,
		Path:    "",
		Handler: (*Users).Create,
		Options: &route.Options{Description: "Create a user", Tags: []string{"api", "users"}},
	}).
		Auth(auth.Config{Scope: []string{"users:write"}}).
		Payload(validation.Schema{"name": "required,min=1", "email": "required,email"})
	m.Delete("/:id", (*Users).Delete).
		Auth(auth.Config{Scope: []string{"users:admin"}}).
		Describe("Delete a user", "api", "users")
}

func (u *Users) List(c *gin.Context) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	limit, _ := strconv.Atoi(c.Query("limit"))
	out := make([]user, 0, len(u.users))
	for id := 1; id < u.nextID; id++ {
		if usr, ok := u.users[id]; ok {
			out = append(out, usr)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	c.JSON(http.StatusOK, out)
}

func (u *Users) Get(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	u.mu.RLock()
	usr, ok := u.users[id]
	u.mu.RUnlock()

	if !ok {
		u.svc.HandleErr(c, errUserNotFound, "", http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, usr)
}

func (u *Users) Create(c *gin.Context) {
	var usr user
	if err := c.ShouldBindJSON(&usr); err != nil {
		u.svc.HandleErr(c, err, "invalid user payload", http.StatusBadRequest)
		return
	}

	u.mu.Lock()
	usr.ID = u.nextID
	u.nextID++
	u.users[usr.ID] = usr
	u.mu.Unlock()

	c.JSON(http.StatusCreated, usr)
}

func (u *Users) Delete(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("id"))

	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.users[id]; !ok {
		u.svc.HandleErr(c, errUserNotFound, "", http.StatusNotFound)
		return
	}
	delete(u.users, id)
	c.Status(http.StatusNoContent)
}
