package slack

import "github.com/NeuroForge1/Genia-fronted-sub001/internal/port/connector"

func init() {
	connector.RegisterSocial(providerName, func(creds connector.Credentials) (connector.SocialConnector, error) {
		return New(creds)
	})
}
