package helper

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const LocalsMemberID = "member_id"

// CallerMemberID returns the authenticated member id, or nil for anonymous calls.
func CallerMemberID(c *fiber.Ctx) *uint {
	switch v := c.Locals(LocalsMemberID).(type) {
	case uint:
		if v == 0 {
			return nil
		}
		return &v
	case string:
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil || n == 0 {
			return nil
		}
		id := uint(n)
		return &id
	}
	return nil
}

// ParamUint reads a positive numeric path parameter.
func ParamUint(c *fiber.Ctx, name string) (uint, error) {
	n, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || n == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, name+" must be a positive integer")
	}
	return uint(n), nil
}

// QueryUintPtr reads an optional numeric query filter.
func QueryUintPtr(c *fiber.Ctx, name string) (*uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, name+" must be a non-negative integer")
	}
	id := uint(n)
	return &id, nil
}

func QueryIntPtr(c *fiber.Ctx, name string) (*int, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, name+" must be an integer")
	}
	return &n, nil
}
