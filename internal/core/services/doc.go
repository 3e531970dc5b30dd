// Package services contains the core application services implementing
// the driving ports. Services depend only on driven port interfaces and
// hold no infrastructure code themselves.
package services
