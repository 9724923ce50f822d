package mailchimp

import "github.com/NeuroForge1/Genia-fronted-sub001/internal/port/connector"

func init() {
	connector.RegisterEmail(providerName, func(creds connector.Credentials) (connector.EmailConnector, error) {
		return New(creds)
	})
}
