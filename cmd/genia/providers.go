package main

// Connector blank imports: each import registers its social or email
// constructors with the connector registry.

import (
	_ "github.com/NeuroForge1/Genia-fronted-sub001/internal/adapter/email"
	_ "github.com/NeuroForge1/Genia-fronted-sub001/internal/adapter/facebook"
	_ "github.com/NeuroForge1/Genia-fronted-sub001/internal/adapter/mailchimp"
	_ "github.com/NeuroForge1/Genia-fronted-sub001/internal/adapter/slack"
)
