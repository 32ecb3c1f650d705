package vos_client

// BaseURL is the production vote-counter service.
const BaseURL = "https://vos-alt1.fly.dev"

const (
	vosEndpoint             = "/vos"
	lastVosEndpoint         = "/last_vos"
	increaseCounterEndpoint = "/increase_counter"
)

const contentTypeJSON = "application/json; charset=UTF-8"
