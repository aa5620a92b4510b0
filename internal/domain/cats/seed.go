package cats

import (
	"context"
	"time"
)

// SeedFunc puebla un store recién creado. Los stores la ejecutan una sola vez,
// cuando crean el almacenamiento por primera vez.
type SeedFunc func(ctx context.Context, repo Repository) error

const seedImage = "assets/images/cat1.png"

// DefaultSeed carga los gatos de ejemplo repartidos en los rangos de edad.
func DefaultSeed(now func() time.Time) SeedFunc {
	return func(ctx context.Context, repo Repository) error {
		_, err := repo.InsertMany(ctx, SeedCats(now()))
		return err
	}
}

// SeedCats: dos de cada rango de edad y tres mayores de 5 años. Los dos de
// hasta un año son ingresos de hoy; el resto ingresó hace 60 días.
func SeedCats(now time.Time) []Cat {
	admitted := now.Add(-60 * day)

	mk := func(dob, admittedAt time.Time, desc string) Cat {
		return Cat{
			Name:        "Tibs",
			Gender:      GenderMale,
			Breed:       "Moggie",
			Description: desc,
			DOB:         dob,
			AdmittedAt:  admittedAt,
			ImagePath:   seedImage,
		}
	}

	const desc = "Lorem ipsum dolor sit amet, consectetur..."

	upToOneYear := now.Add(-(365 / 2) * day)
	oneToTwo := now.Add(-(365 + 18) * day)
	twoToFive := now.Add(-(365 * 3) * day)
	overFive := now.Add(-(365 * 10) * day)

	return []Cat{
		mk(upToOneYear, now, "Lorem ipsum dolor..."),
		mk(upToOneYear, now, "Lorem ipsum dolor..."),
		mk(oneToTwo, admitted, desc),
		mk(oneToTwo, admitted, desc),
		mk(twoToFive, admitted, desc),
		mk(twoToFive, admitted, desc),
		mk(overFive, admitted, desc),
		mk(overFive, admitted, desc),
		mk(overFive, admitted, desc),
	}
}
