package store

// Resource is a learning resource record as served by the API.
// The store neither validates nor transforms it.
type Resource map[string]interface{}

// State is a snapshot of the store.
type State struct {
	Resources []Resource `json:"resources"`
	Loading   bool       `json:"loading"`
	Error     *string    `json:"error"`
}

func (st State) clone() State {
	c := State{
		Resources: make([]Resource, len(st.Resources)),
		Loading:   st.Loading,
	}

	copy(c.Resources, st.Resources)

	if st.Error != nil {
		msg := *st.Error
		c.Error = &msg
	}

	return c
}
