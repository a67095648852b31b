package models

// Permission is a named capability that can be granted to users.
type Permission struct {
	ID       uint64 `gorm:"primarykey" json:"id"`
	Codename string `gorm:"type:varchar(100);uniqueIndex;not null" json:"codename"`
	Name     string `gorm:"type:varchar(255);not null" json:"name"`
}

// DefaultPermissions are seeded at migration time.
var DefaultPermissions = []Permission{
	{Codename: "view_user", Name: "Can view user"},
	{Codename: "change_user", Name: "Can change user"},
	{Codename: "view_task", Name: "Can view task"},
	{Codename: "add_task", Name: "Can add task"},
	{Codename: "change_task", Name: "Can change task"},
	{Codename: "delete_task", Name: "Can delete task"},
}
