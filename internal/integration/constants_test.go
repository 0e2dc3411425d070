package integration_test

const (
	TestShowId       = 1
	TestShowCapacity = 50

	TestSmallShowId = 2

	TestUserId      = 7
	TestOtherUserId = 8

	TestBookingId = 1
)
