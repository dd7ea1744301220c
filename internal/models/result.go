package models

import "github.com/witsml-transfer/backend/internal/witsml"

// EntityDescription gives the UI readable names for the object a failed job touched.
type EntityDescription struct {
	WellName     string `json:"wellName,omitempty" msgpack:"wellName,omitempty"`
	WellboreName string `json:"wellboreName,omitempty" msgpack:"wellboreName,omitempty"`
	ObjectName   string `json:"objectName,omitempty" msgpack:"objectName,omitempty"`
}

// WorkerResult is the single outcome of one job execution.
type WorkerResult struct {
	ServerUrl   string             `json:"serverUrl" msgpack:"serverUrl"`
	IsSuccess   bool               `json:"isSuccess" msgpack:"isSuccess"`
	Message     string             `json:"message" msgpack:"message"`
	Reason      string             `json:"reason,omitempty" msgpack:"reason,omitempty"`
	Description *EntityDescription `json:"description,omitempty" msgpack:"description,omitempty"`
}

// NewSuccess returns a successful result.
func NewSuccess(serverUrl, message string) WorkerResult {
	return WorkerResult{ServerUrl: serverUrl, IsSuccess: true, Message: message}
}

// NewFailure returns a failed result. Reason should be the store's own reason when there is one.
func NewFailure(serverUrl, message, reason string, description *EntityDescription) WorkerResult {
	return WorkerResult{ServerUrl: serverUrl, IsSuccess: false, Message: message, Reason: reason, Description: description}
}

// RefreshType tells the UI what happened to the objects it caches.
type RefreshType string

const (
	RefreshAdd    RefreshType = "Add"
	RefreshUpdate RefreshType = "Update"
	RefreshRemove RefreshType = "Remove"
)

// RefreshAction tells the UI which part of its cached tree to fetch again.
// An empty ObjectUid refreshes every object of ObjectType on the wellbore.
type RefreshAction struct {
	ServerUrl   string            `json:"serverUrl" msgpack:"serverUrl"`
	WellUid     string            `json:"wellUid" msgpack:"wellUid"`
	WellboreUid string            `json:"wellboreUid" msgpack:"wellboreUid"`
	ObjectType  witsml.ObjectType `json:"objectType" msgpack:"objectType"`
	ObjectUid   string            `json:"objectUid,omitempty" msgpack:"objectUid,omitempty"`
	RefreshType RefreshType       `json:"refreshType" msgpack:"refreshType"`
}

// NewRefreshObjects refreshes every object of one type on a wellbore.
func NewRefreshObjects(serverUrl, wellUid, wellboreUid string, objectType witsml.ObjectType, refreshType RefreshType) *RefreshAction {
	return &RefreshAction{
		ServerUrl:   serverUrl,
		WellUid:     wellUid,
		WellboreUid: wellboreUid,
		ObjectType:  objectType,
		RefreshType: refreshType,
	}
}

// NewRefreshObject refreshes one object.
func NewRefreshObject(serverUrl, wellUid, wellboreUid string, objectType witsml.ObjectType, uid string, refreshType RefreshType) *RefreshAction {
	r := NewRefreshObjects(serverUrl, wellUid, wellboreUid, objectType, refreshType)
	r.ObjectUid = uid
	return r
}
