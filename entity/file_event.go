package entity

type FileEvent string

const (
	FileEventStored  FileEvent = "file.stored"
	FileEventDeleted FileEvent = "file.deleted"
)
