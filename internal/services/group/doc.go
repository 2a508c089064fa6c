// Package group manages named outbound and inbound group sessions in the
// vault. Outbound sessions live under "groups", inbound ones under
// "inbound"; the two namespaces are independent.
package group
