package main

import (
	"context"
	"time"

	"github.com/wayfare-app/wayfare-api/internal/app/trips"
	"github.com/wayfare-app/wayfare-api/internal/domain"
	userrepoport "github.com/wayfare-app/wayfare-api/internal/ports/out/userrepo"
)

// seed loads a small demo dataset into the memory backend: two users and two
// trips. Only used when WAYFARE_SEED=true.
func seed(ctx context.Context, userRepo userrepoport.Repository, tripSvc *trips.Service) error {
	now := time.Now().UTC()
	seedUsers := []userrepoport.User{
		{
			Username:  "jmoran@ceiamerica.com",
			Password:  "Pa$$w0rd",
			FirstName: "Jerry",
			LastName:  "Moran",
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			Username:  "dummyuser@dummy.dum",
			Password:  "Pa$$w0rd",
			FirstName: "Dummy",
			LastName:  "User",
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	for _, u := range seedUsers {
		if err := userRepo.Create(ctx, u); err != nil {
			return err
		}
	}

	nycDetails := "Long weekend in the city."
	westDetails := "Desert parks loop."
	seedTrips := []*trips.TripInput{
		{
			Title:     "New York City Getaway",
			Details:   &nycDetails,
			StartDate: time.Date(now.Year()+1, 5, 8, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(now.Year()+1, 5, 11, 0, 0, 0, 0, time.UTC),
			Destinations: []domain.Destination{
				{ID: "ChIJw4OtV8ZZwokRn-zvhYiYgZc", City: "New York", Region: "NY", Country: "USA"},
			},
			Members: []string{"jmoran@ceiamerica.com", "dummyuser@dummy.dum"},
			Todos: []domain.TodoItem{
				{Task: "Book Broadway tickets", Complete: false},
				{Task: "Reserve hotel", Complete: true},
			},
		},
		{
			Title:     "Southwest Parks Loop",
			Details:   &westDetails,
			StartDate: time.Date(now.Year()+1, 9, 14, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(now.Year()+1, 9, 24, 0, 0, 0, 0, time.UTC),
			Destinations: []domain.Destination{
				{ID: "ChIJVVVVVVXlyIARP-ybkNuP_rY", City: "Grand Canyon Village", Region: "AZ", Country: "USA"},
				{ID: "ChIJ61VnYMMSzYARBkzdyZLfTsY", City: "Springdale", Region: "UT", Country: "USA"},
			},
			Members: []string{"jmoran@ceiamerica.com"},
			Todos: []domain.TodoItem{
				{Task: "Reserve campsites", Complete: false},
			},
		},
	}
	for _, in := range seedTrips {
		if _, err := tripSvc.Add(ctx, in); err != nil {
			return err
		}
	}
	return nil
}
