package daverr

import (
	"fmt"
	"strings"
)

type Class int

const (
	ClassNone Class = iota
	ClassClient
	ClassServer
)

func (c Class) String() string {
	switch c {
	case ClassClient:
		return "client"
	case ClassServer:
		return "server"
	}
	return "none"
}

func ClassOf(status int) Class {
	switch {
	case status >= 400 && status < 500:
		return ClassClient
	case status >= 500 && status < 600:
		return ClassServer
	}
	return ClassNone
}

type key struct {
	method string
	status int
}

const (
	descSameURI       = "the source and destination URIs are the same"
	descMissingParent = "one or more parent collections are missing at the destination"
	descNoOverwrite   = "the destination resource already exists and overwrite is disabled"
	descBadGateway    = "the destination server refused to accept the resource"
	descMissingInter  = "one or more intermediate collections are missing"
)

var descriptions = map[key]string{
	{"MOVE", 403}: descSameURI,
	{"MOVE", 409}: descMissingParent,
	{"MOVE", 412}: descNoOverwrite,
	{"MOVE", 423}: "the source or the destination resource was locked",
	{"MOVE", 502}: descBadGateway,

	{"COPY", 403}: descSameURI,
	{"COPY", 409}: descMissingParent,
	{"COPY", 412}: descNoOverwrite,
	{"COPY", 423}: "the destination resource was locked",
	{"COPY", 502}: descBadGateway,
	{"COPY", 507}: "the destination does not have enough space to record the resource",

	{"LOCK", 412}: "the lock token could not be enforced",
	{"LOCK", 423}: "the resource is already locked",

	{"UNLOCK", 400}: "no lock token was provided",
	{"UNLOCK", 403}: "the lock is not owned by the requester",
	{"UNLOCK", 409}: "the resource is not locked by the submitted token",

	{"MKCOL", 403}: "collections cannot be created at the requested location",
	{"MKCOL", 405}: "the resource already exists",
	{"MKCOL", 409}: descMissingInter,
	{"MKCOL", 415}: "the server does not support the request body type",
	{"MKCOL", 507}: "the server does not have enough space to record the collection",

	{"PROPPATCH", 403}: "the client attempted to modify a protected property",
	{"PROPPATCH", 409}: "the property value is not appropriate for the property",
	{"PROPPATCH", 423}: "the resource is locked",
	{"PROPPATCH", 507}: "the server does not have enough space to record the properties",

	{"PROPFIND", 403}: "the server does not accept requests with depth infinity",

	{"PUT", 409}: descMissingInter,
	{"PUT", 423}: "the resource is locked",

	{"DELETE", 423}: "the resource or one of its members is locked",
}

// Describe maps a failed exchange to its class and a human readable
// description. ok is false when status is not a 4xx or 5xx code.
func Describe(method string, status int) (Class, string, bool) {
	cls := ClassOf(status)
	if cls == ClassNone {
		return ClassNone, "", false
	}
	if desc, ok := descriptions[key{method: strings.ToUpper(method), status: status}]; ok {
		return cls, desc, true
	}
	return cls, fmt.Sprintf("%d %s", status, StatusText(status)), true
}
