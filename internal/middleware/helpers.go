// internal/middleware/helpers.go
package middleware

import "github.com/gin-gonic/gin"

// GetSalonID gets the authenticated salon ID from context
func GetSalonID(c *gin.Context) (int64, bool) {
	v, exists := c.Get("salon_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// MustGetSalonID gets the salon ID from context or panics
func MustGetSalonID(c *gin.Context) int64 {
	id, exists := GetSalonID(c)
	if !exists {
		panic("salon_id not found in context")
	}
	return id
}

// GetRoles gets the authenticated roles from context
func GetRoles(c *gin.Context) []string {
	v, exists := c.Get("roles")
	if !exists {
		return []string{}
	}
	roles, ok := v.([]string)
	if !ok {
		return []string{}
	}
	return roles
}
